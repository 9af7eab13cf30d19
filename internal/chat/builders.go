package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dispatchhq/dispatchd/internal/event"
)

const (
	colorGood    = "#36a64f"
	colorDanger  = "#c0392b"
	colorNeutral = "#345"
)

// builder constructs a message for one event family. A nil return means
// no notification for this payload, which is a valid outcome.
type builder func(payload event.Payload) *Message

// selectBuilder is the total message-selection function: every known kind
// maps to a strategy, unknown kinds map to nil.
func selectBuilder(kind event.Kind) builder {
	switch event.Normalize(kind) {
	case event.KindPush:
		return buildPush
	case event.KindTagPush:
		return buildTagPush
	case event.KindIssue, event.KindConfidentialIssue:
		return buildIssue
	case event.KindIncident:
		return buildIncident
	case event.KindMergeRequest:
		return buildMergeRequest
	case event.KindNote, event.KindConfidentialNote:
		return buildNote
	case event.KindPipeline:
		return buildPipeline
	case event.KindWikiPage:
		return buildWikiPage
	case event.KindDeployment:
		return buildDeployment
	case event.KindGroupMention, event.KindGroupConfidentialMention:
		return buildGroupMention
	case event.KindAlert:
		return buildAlert
	default:
		return nil
	}
}

// updateSuppressed reports whether an update-type sub-event must not
// re-notify. Notes and pipelines always notify when upstream filters pass.
func updateSuppressed(kind event.Kind, payload event.Payload) bool {
	switch event.Normalize(kind) {
	case event.KindNote, event.KindConfidentialNote, event.KindPipeline:
		return false
	case event.KindIssue, event.KindConfidentialIssue, event.KindMergeRequest, event.KindIncident:
		return payload.Action() == "update"
	default:
		return false
	}
}

func buildPush(payload event.Payload) *Message {
	branch := payload.Branch()
	count := payload.CommitCount()
	text := fmt.Sprintf("%s pushed %d %s to branch %s of %s",
		payload.UserName(), count, pluralize(count, "commit"), branch, projectLink(payload))
	return &Message{Text: text, Fallback: text}
}

func buildTagPush(payload event.Payload) *Message {
	tag := strings.TrimPrefix(payload.Ref(), "refs/tags/")
	text := fmt.Sprintf("%s pushed new tag %s to %s", payload.UserName(), tag, projectLink(payload))
	return &Message{Text: text, Fallback: text}
}

func buildIssue(payload event.Payload) *Message {
	action := presentAction(payload.Action(), "opened")
	text := fmt.Sprintf("%s %s issue %s in %s",
		payload.UserName(), action, payload.Title(), projectLink(payload))
	return &Message{
		Text:        text,
		Fallback:    text,
		Attachments: []Attachment{{Title: payload.Title(), Text: payload.URL(), Color: colorNeutral}},
	}
}

func buildIncident(payload event.Payload) *Message {
	text := fmt.Sprintf("%s %s incident %s in %s",
		payload.UserName(), presentAction(payload.Action(), "opened"), payload.Title(), projectLink(payload))
	return &Message{
		Text:        text,
		Fallback:    text,
		Attachments: []Attachment{{Title: payload.Title(), Text: payload.URL(), Color: colorDanger}},
	}
}

func buildMergeRequest(payload event.Payload) *Message {
	text := fmt.Sprintf("%s %s merge request %s in %s",
		payload.UserName(), presentAction(payload.Action(), "opened"), payload.Title(), projectLink(payload))
	return &Message{Text: text, Fallback: text}
}

func buildNote(payload event.Payload) *Message {
	target := payload.Get("object_attributes.noteable_type")
	if target == "" {
		target = "commit"
	}
	text := fmt.Sprintf("%s commented on %s in %s: %s",
		payload.UserName(), strings.ToLower(target), projectLink(payload), truncate(payload.Get("object_attributes.note"), 200))
	return &Message{Text: text, Fallback: text}
}

func buildPipeline(payload event.Payload) *Message {
	status := payload.PipelineStatus()
	color := colorGood
	verb := "passed"
	if status == "failed" {
		color = colorDanger
		verb = "failed"
	} else if status != "success" {
		color = colorNeutral
		verb = status
	}
	text := fmt.Sprintf("Pipeline for branch %s of %s %s", payload.Branch(), projectLink(payload), verb)
	return &Message{
		Text:        text,
		Fallback:    text,
		Attachments: []Attachment{{Title: "Pipeline " + status, Text: payload.Get("object_attributes.url"), Color: color}},
	}
}

func buildWikiPage(payload event.Payload) *Message {
	text := fmt.Sprintf("%s %s wiki page %s in %s",
		payload.UserName(), presentAction(payload.Action(), "created"), payload.Title(), projectLink(payload))
	return &Message{Text: text, Fallback: text}
}

func buildDeployment(payload event.Payload) *Message {
	text := fmt.Sprintf("Deploy to %s %s for %s",
		payload.Get("environment"), payload.Get("status"), projectLink(payload))
	return &Message{Text: text, Fallback: text}
}

func buildGroupMention(payload event.Payload) *Message {
	text := fmt.Sprintf("Group %s was mentioned in %s",
		payload.Get("mentioned.name"), projectLink(payload))
	return &Message{Text: text, Fallback: text}
}

func buildAlert(payload event.Payload) *Message {
	title := payload.Get("object_attributes.title")
	text := fmt.Sprintf("Alert firing in %s: %s", projectLink(payload), title)
	return &Message{
		Text:        text,
		Fallback:    text,
		Attachments: []Attachment{{Title: title, Text: payload.Get("object_attributes.url"), Color: colorDanger}},
	}
}

func projectLink(payload event.Payload) string {
	name := payload.ProjectName()
	if url := payload.ProjectWebURL(); url != "" {
		return fmt.Sprintf("<%s|%s>", url, name)
	}
	return name
}

func presentAction(action, fallback string) string {
	switch action {
	case "open":
		return "opened"
	case "close":
		return "closed"
	case "reopen":
		return "reopened"
	case "merge":
		return "merged"
	case "create":
		return "created"
	case "delete":
		return "deleted"
	case "":
		return fallback
	default:
		return action
	}
}

func pluralize(count int, word string) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	for limit > 0 && !utf8.RuneStart(value[limit]) {
		limit--
	}
	return value[:limit] + "…"
}
