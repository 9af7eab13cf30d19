package event

// Kind tags one inbound webhook event category.
type Kind string

const (
	KindPush                     Kind = "push"
	KindTagPush                  Kind = "tag_push"
	KindCommit                   Kind = "commit"
	KindIssue                    Kind = "issue"
	KindConfidentialIssue        Kind = "confidential_issue"
	KindMergeRequest             Kind = "merge_request"
	KindNote                     Kind = "note"
	KindConfidentialNote         Kind = "confidential_note"
	KindPipeline                 Kind = "pipeline"
	KindJob                      Kind = "job"
	KindWikiPage                 Kind = "wiki_page"
	KindDeployment               Kind = "deployment"
	KindRelease                  Kind = "release"
	KindAlert                    Kind = "alert"
	KindIncident                 Kind = "incident"
	KindGroupMention             Kind = "group_mention"
	KindGroupConfidentialMention Kind = "group_confidential_mention"
	KindWorkItem                 Kind = "work_item"
	KindConfidentialWorkItem     Kind = "confidential_work_item"
)

// Normalize maps work-item kinds onto their issue equivalents. All other
// kinds map to themselves.
func Normalize(kind Kind) Kind {
	switch kind {
	case KindWorkItem:
		return KindIssue
	case KindConfidentialWorkItem:
		return KindConfidentialIssue
	default:
		return kind
	}
}

// IsWorkItem reports whether the kind is one of the work-item aliases.
func IsWorkItem(kind Kind) bool {
	return kind == KindWorkItem || kind == KindConfidentialWorkItem
}

var labelBearing = map[Kind]struct{}{
	KindIssue:                {},
	KindConfidentialIssue:    {},
	KindMergeRequest:         {},
	KindNote:                 {},
	KindConfidentialNote:     {},
	KindIncident:             {},
	KindWorkItem:             {},
	KindConfidentialWorkItem: {},
}

// CarriesLabels reports whether events of this kind may carry labels.
func CarriesLabels(kind Kind) bool {
	_, ok := labelBearing[kind]
	return ok
}
