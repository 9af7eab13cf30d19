package registry

import "github.com/dispatchhq/dispatchd/internal/event"

// Default declares the built-in variant catalog. Declarations are static;
// Build freezes them into the immutable lookup table.
func Default() *Registry {
	return MustBuild(Catalog())
}

var baseSupportedEvents = []event.Kind{
	event.KindCommit,
	event.KindPush,
	event.KindTagPush,
	event.KindIssue,
	event.KindConfidentialIssue,
	event.KindMergeRequest,
	event.KindWikiPage,
}

var chatSupportedEvents = []event.Kind{
	event.KindPush,
	event.KindTagPush,
	event.KindIssue,
	event.KindConfidentialIssue,
	event.KindMergeRequest,
	event.KindNote,
	event.KindConfidentialNote,
	event.KindPipeline,
	event.KindWikiPage,
	event.KindDeployment,
	event.KindIncident,
	event.KindAlert,
	event.KindGroupMention,
	event.KindGroupConfidentialMention,
}

var ciSupportedEvents = []event.Kind{
	event.KindPush,
	event.KindTagPush,
	event.KindMergeRequest,
}

var issueTrackerSupportedEvents = []event.Kind{
	event.KindCommit,
	event.KindMergeRequest,
}

// chatNotifierBase is the shared contract of webhook-driven chat notifiers.
// Vendor variants specialize it by overriding identity and extending fields.
func chatNotifierBase(kind, title, description string) Variant {
	return Variant{
		Kind:                 kind,
		Title:                title,
		Description:          description,
		Category:             CategoryChat,
		Level:                LevelAny,
		SupportedEvents:      chatSupportedEvents,
		RequiresWebhook:      true,
		ConfigurableChannels: false,
		Fields: []Field{
			{Name: "webhook", Type: FieldTypeText, Storage: StorageProperties, Required: true, Secret: true, Description: "Incoming webhook URL."},
			{Name: "username", Type: FieldTypeText, Storage: StorageProperties, Description: "Bot name shown on messages."},
			{Name: "notify_only_broken_pipelines", Type: FieldTypeCheckbox, Storage: StorageProperties, Description: "Send pipeline notifications only for broken pipelines."},
			{Name: "branches_to_be_notified", Type: FieldTypeSelect, Storage: StorageProperties, Choices: []string{"all", "default", "protected", "default_and_protected"}, Description: "Branches for which notifications are sent."},
			{Name: "labels_to_be_notified", Type: FieldTypeText, Storage: StorageProperties, Description: "Labels to filter notifications by."},
			{Name: "labels_to_be_notified_behavior", Type: FieldTypeSelect, Storage: StorageProperties, Choices: []string{"match_any", "match_all"}, Description: "How configured labels are matched against event labels."},
		},
	}
}

// channelAwareChatNotifier extends the chat base with a default channel and
// per-event channel overrides.
func channelAwareChatNotifier(kind, title, description string, masked bool) Variant {
	variant := chatNotifierBase(kind, title, description)
	variant.ConfigurableChannels = true
	variant.MaskConfigurableChannels = masked
	variant = variant.extend(Field{
		Name: "channel", Type: FieldTypeText, Storage: StorageProperties, Secret: masked,
		Description: "Default channel to post to.",
	})
	for _, eventKind := range chatSupportedEvents {
		variant = variant.extend(Field{
			Name:    ChannelFieldName(eventKind),
			Type:    FieldTypeText,
			Storage: StorageProperties,
			Secret:  masked,
			APIOnly: true,
		})
	}
	return variant
}

// ChannelFieldName is the per-event channel override property name.
func ChannelFieldName(kind event.Kind) string {
	return string(kind) + "_channel"
}

func ciVariant(kind, title, description string) Variant {
	return Variant{
		Kind:            kind,
		Title:           title,
		Description:     description,
		Category:        CategoryCI,
		Level:           LevelAny,
		SupportedEvents: ciSupportedEvents,
		Fields: []Field{
			{Name: "project_url", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "Base URL of the CI project."},
			{Name: "username", Type: FieldTypeText, Storage: StorageProperties, Description: "User with API access."},
			{Name: "password", Type: FieldTypePassword, Storage: StorageProperties, Description: "API password or token."},
		},
	}
}

func issueTrackerVariant(kind, title, description string) Variant {
	return Variant{
		Kind:               kind,
		Title:              title,
		Description:        description,
		Category:           CategoryIssueTracker,
		Level:              LevelAny,
		SupportedEvents:    issueTrackerSupportedEvents,
		SupportsDataFields: true,
		Fields: []Field{
			{Name: "project_url", Type: FieldTypeText, Storage: StorageDataFields, Required: true, Description: "URL of the project in the tracker."},
			{Name: "issues_url", Type: FieldTypeText, Storage: StorageDataFields, Required: true, Description: "Issue URL pattern, :id is replaced with the issue id."},
			{Name: "new_issue_url", Type: FieldTypeText, Storage: StorageDataFields, Required: true, Description: "URL for creating a new issue."},
		},
	}
}

// Catalog lists every built-in variant declaration.
func Catalog() []Variant {
	return []Variant{
		// Chat notifiers with channel routing.
		channelAwareChatNotifier("slack", "Slack notifications", "Send notifications about project events to Slack.", false),
		channelAwareChatNotifier("mattermost", "Mattermost notifications", "Send notifications about project events to Mattermost.", false),
		channelAwareChatNotifier("discord", "Discord notifications", "Send notifications about project events to Discord.", true),
		channelAwareChatNotifier("telegram", "Telegram", "Send notifications about project events to Telegram.", true),

		// Chat notifiers without channel routing.
		chatNotifierBase("microsoft_teams", "Microsoft Teams notifications", "Send notifications about project events to Microsoft Teams."),
		chatNotifierBase("hangouts_chat", "Google Chat", "Send notifications about project events to a Google Chat space."),
		chatNotifierBase("webex_teams", "Webex Teams", "Send notifications about project events to Webex Teams."),
		chatNotifierBase("pumble", "Pumble", "Send notifications about project events to Pumble."),
		chatNotifierBase("unify_circuit", "Unify Circuit", "Send notifications about project events to Unify Circuit."),

		// Slash command handlers: chat category without outbound notification.
		{
			Kind: "slack_slash_commands", Title: "Slack slash commands",
			Description: "Perform common operations in Slack.",
			Category:    CategoryChat, Level: LevelAny,
			SupportedEvents: nil,
			Fields: []Field{
				{Name: "token", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Verification token from the slash command configuration."},
			},
		},
		{
			Kind: "mattermost_slash_commands", Title: "Mattermost slash commands",
			Description: "Perform common tasks with slash commands.",
			Category:    CategoryChat, Level: LevelAny,
			SupportedEvents: nil,
			Fields: []Field{
				{Name: "token", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Verification token from the slash command configuration."},
			},
		},

		// CI status providers.
		ciVariant("teamcity", "JetBrains TeamCity", "Run CI/CD pipelines with TeamCity."),
		ciVariant("bamboo", "Atlassian Bamboo", "Run CI/CD pipelines with Bamboo."),
		ciVariant("buildkite", "Buildkite", "Run CI/CD pipelines with Buildkite."),
		ciVariant("drone_ci", "Drone", "Run CI/CD pipelines with Drone."),
		func() Variant {
			v := ciVariant("jenkins", "Jenkins", "Run CI/CD pipelines with Jenkins.")
			v.Level = LevelProjectOnly
			return v
		}(),
		ciVariant("mock_ci", "Mock CI", "Mock CI provider for local development."),

		// Issue trackers on data-fields storage.
		issueTrackerVariant("redmine", "Redmine", "Use Redmine as this project's issue tracker."),
		issueTrackerVariant("bugzilla", "Bugzilla", "Use Bugzilla as this project's issue tracker."),
		issueTrackerVariant("youtrack", "JetBrains YouTrack", "Use YouTrack as this project's issue tracker."),
		issueTrackerVariant("ewm", "EWM", "Use IBM Engineering Workflow Management as this project's issue tracker."),
		issueTrackerVariant("clickup", "ClickUp", "Use ClickUp as this project's issue tracker."),
		issueTrackerVariant("phorge", "Phorge", "Use Phorge as this project's issue tracker."),
		issueTrackerVariant("custom_issue_tracker", "Custom issue tracker", "Use a custom issue tracker for this project."),
		func() Variant {
			v := issueTrackerVariant("jira", "Jira", "Use Jira as this project's issue tracker.")
			v = v.extend(
				Field{Name: "url", Type: FieldTypeText, Storage: StorageDataFields, Required: true, Description: "Base URL of the Jira instance."},
				Field{Name: "api_token", Type: FieldTypePassword, Storage: StorageDataFields, Required: true, Description: "API token or password."},
				Field{Name: "jira_issue_transition_id", Type: FieldTypeText, Storage: StorageDataFields, Description: "Transition ids used to move issues when a commit references them."},
			)
			return v
		}(),
		func() Variant {
			v := issueTrackerVariant("jira_cloud_app", "Jira Cloud app", "Use the Jira Cloud application integration.")
			v.Level = LevelProjectAndGroup
			return v
		}(),

		// Wikis.
		{
			Kind: "external_wiki", Title: "External wiki",
			Description: "Link an external wiki from the sidebar.",
			Category:    CategoryWiki, Level: LevelAny,
			SupportedEvents: nil,
			Fields: []Field{
				{Name: "external_wiki_url", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "URL of the external wiki."},
			},
		},
		{
			Kind: "confluence", Title: "Confluence Workspace",
			Description: "Link to a Confluence Workspace from the sidebar.",
			Category:    CategoryWiki, Level: LevelAny,
			SupportedEvents: nil,
			Fields: []Field{
				{Name: "confluence_url", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "URL of the Confluence Workspace."},
			},
		},

		// Generic webhook-style integrations.
		{
			Kind: "webhook", Title: "Generic webhook",
			Description: "Deliver signed event payloads to an HTTP endpoint.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: chatSupportedEvents,
			RequiresWebhook: true,
			Fields: []Field{
				{Name: "webhook", Type: FieldTypeText, Storage: StorageProperties, Required: true, Secret: true, Description: "Destination endpoint URL."},
				{Name: "secret", Type: FieldTypePassword, Storage: StorageProperties, Description: "Shared secret used to sign deliveries."},
				{Name: "cloudevents", Type: FieldTypeCheckbox, Storage: StorageProperties, Description: "Wrap deliveries in a CloudEvents envelope."},
			},
		},
		{
			Kind: "pipelines_email", Title: "Pipeline status emails",
			Description: "Email the pipeline status to a list of recipients.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPipeline},
			Fields: []Field{
				{Name: "recipients", Type: FieldTypeTextarea, Storage: StorageProperties, Required: true, Description: "Comma-separated list of recipient email addresses."},
				{Name: "notify_only_broken_pipelines", Type: FieldTypeCheckbox, Storage: StorageProperties, Description: "Notify only for broken pipelines."},
				{Name: "branches_to_be_notified", Type: FieldTypeSelect, Storage: StorageProperties, Choices: []string{"all", "default", "protected", "default_and_protected"}, Description: "Branches for which notifications are sent."},
			},
		},
		{
			Kind: "emails_on_push", Title: "Emails on push",
			Description: "Email commits and diffs on push.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPush, event.KindTagPush},
			Fields: []Field{
				{Name: "recipients", Type: FieldTypeTextarea, Storage: StorageProperties, Required: true, Description: "Comma-separated list of recipient email addresses."},
				{Name: "branches_to_be_notified", Type: FieldTypeSelect, Storage: StorageProperties, Choices: []string{"all", "default", "protected", "default_and_protected"}, Description: "Branches for which notifications are sent."},
			},
		},
		{
			Kind: "irker", Title: "irker (IRC gateway)",
			Description: "Send update messages to an irker server.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPush},
			Fields: []Field{
				{Name: "recipients", Type: FieldTypeTextarea, Storage: StorageProperties, Required: true, Description: "Channels and users to notify."},
				{Name: "server_host", Type: FieldTypeText, Storage: StorageProperties, Description: "irker daemon host."},
				{Name: "server_port", Type: FieldTypeText, Storage: StorageProperties, Description: "irker daemon port."},
			},
		},
		{
			Kind: "asana", Title: "Asana",
			Description: "Add commit messages as comments to Asana tasks.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPush},
			Fields: []Field{
				{Name: "api_key", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Personal access token."},
				{Name: "restrict_to_branch", Type: FieldTypeText, Storage: StorageProperties, Description: "Comma-separated list of branches to be notified. Leave blank for all."},
			},
		},
		{
			Kind: "packagist", Title: "Packagist",
			Description: "Keep your PHP dependencies updated on Packagist.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPush, event.KindTagPush, event.KindMergeRequest},
			Fields: []Field{
				{Name: "username", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "Packagist username."},
				{Name: "token", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Packagist API token."},
			},
		},
		{
			Kind: "pushover", Title: "Pushover",
			Description: "Get real-time notifications on your device.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPush},
			Fields: []Field{
				{Name: "api_key", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Application key."},
				{Name: "user_key", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "User key."},
				{Name: "device", Type: FieldTypeText, Storage: StorageProperties, Description: "Leave blank for all active devices."},
			},
		},
		{
			Kind: "campfire", Title: "Campfire",
			Description: "Send notifications about push events to Campfire chat rooms.",
			Category:    CategoryCommon, Level: LevelAny,
			SupportedEvents: []event.Kind{event.KindPush},
			Fields: []Field{
				{Name: "token", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "API authentication token."},
				{Name: "subdomain", Type: FieldTypeText, Storage: StorageProperties, Description: "Campfire subdomain."},
				{Name: "room", Type: FieldTypeText, Storage: StorageProperties, Description: "Campfire room id."},
			},
		},
		{
			Kind: "beyond_identity", Title: "Beyond Identity",
			Description: "Verify commit signatures against Beyond Identity.",
			Category:    CategoryCommon, Level: LevelInstanceOnly,
			SupportedEvents: baseSupportedEvents,
			Fields: []Field{
				{Name: "token", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "API token."},
			},
		},
		{
			Kind: "apple_app_store", Title: "Apple App Store Connect",
			Description: "Use App Store Connect credentials in pipelines.",
			Category:    CategoryCommon, Level: LevelProjectOnly,
			SupportedEvents: nil,
			Fields: []Field{
				{Name: "app_store_issuer_id", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "Issuer ID."},
				{Name: "app_store_key_id", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "Key ID."},
				{Name: "app_store_private_key", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Private key contents."},
			},
		},
		{
			Kind: "google_play", Title: "Google Play",
			Description: "Use Google Play service account credentials in pipelines.",
			Category:    CategoryCommon, Level: LevelProjectOnly,
			SupportedEvents: nil,
			Fields: []Field{
				{Name: "package_name", Type: FieldTypeText, Storage: StorageProperties, Required: true, Description: "Package name of the app."},
				{Name: "service_account_key", Type: FieldTypePassword, Storage: StorageProperties, Required: true, Description: "Service account key JSON."},
			},
		},
	}
}
