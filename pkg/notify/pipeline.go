package notify

import (
	"fmt"
	"strings"

	cdeventsapi "github.com/cdevents/sdk-go/pkg/api"
	cdeventsv05 "github.com/cdevents/sdk-go/pkg/api/v05"

	"github.com/dispatchhq/dispatchd/internal/chat"
)

// BuildPipelineRunBody encodes a finished pipeline delivery as a CDEvents
// pipelineRun event. The returned type string goes into the envelope.
func BuildPipelineRunBody(meta chat.Meta) ([]byte, string, error) {
	project := strings.TrimSpace(meta.ProjectName)
	if project == "" {
		return nil, "", fmt.Errorf("project name is required for pipeline events")
	}

	e, err := cdeventsv05.NewPipelineRunFinishedEvent()
	if err != nil {
		return nil, "", err
	}
	e.SetSource(eventSource)
	e.SetSubjectId(subjectID(project, meta.SHA))
	e.SetSubjectPipelineName(project)
	e.SetSubjectUri(strings.TrimSpace(meta.ProjectURL))
	e.SetSubjectOutcome(pipelineOutcome(meta.Status))
	if meta.Status != "success" {
		e.SetSubjectErrors(fmt.Sprintf("pipeline finished with status %s", meta.Status))
	}

	body, err := cdeventsapi.AsJsonBytes(e)
	if err != nil {
		return nil, "", err
	}
	return body, cdeventsv05.PipelineRunFinishedEventType.String(), nil
}

func subjectID(project, sha string) string {
	sha = strings.TrimSpace(sha)
	if sha == "" {
		return "pipelineRun/" + project
	}
	return fmt.Sprintf("pipelineRun/%s@%s", project, sha)
}

// pipelineOutcome maps upstream pipeline statuses onto CDEvents outcomes.
func pipelineOutcome(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success":
		return "success"
	case "failed":
		return "failure"
	case "canceled", "cancelled", "skipped":
		return "cancel"
	default:
		return "error"
	}
}
