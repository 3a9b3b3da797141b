package promptguard

// Pattern tables used by the rolling line-buffering detector. Matches are
// substring checks against the lowercased current line and lowercased
// recent-line context, in priority order (most specific first) inside
// detectPromptType.
var singleCommandPatterns = []string{
	"do you want to proceed",
	"do you want to run",
	"this command requires approval",
	"requires approval",
	"allow this command",
	"approve this action",
	"run this command?",
	"execute this?",
	"press enter to continue",
	"press y to confirm",
	"(y/n)",
	"[y/n]",
	"(yes/no)",
	"[yes/no]",
	"yes, and don't ask again for",
	"yes, and dont ask again for",
}

var worktreePermissionPatterns = []string{
	"do you want to allow",
	"permission to read",
	"permission to write",
	"permission to access",
	"access files outside",
	"outside the project",
	"worktree access",
	"cross-worktree",
	"outside the current directory",
}

var multiToolBatchPatterns = []string{
	"more tool use",
	"more tool calls",
	"additional tool",
	"+1 more tool",
	"+2 more tool",
	"+3 more tool",
	"+4 more tool",
	"+5 more tool",
}

var replyComposerPatterns = []string{
	"to generate command",
	"generate command",
	"type a message",
	"type your message",
}

var startupReadyPatterns = []string{
	"for shortcuts",
	"try \"",
	"try '",
}
