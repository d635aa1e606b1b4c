package dotlinks

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Declarative dotfile links from git repositories"
	MsgApplyShort      = "Link configured dotfiles into place"
	MsgStatusShort     = "Show the state of every configured link"
	MsgExplainShort    = "Explain dotlinks concepts"
	MsgGenConfigShort  = "Generate a starter configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	MsgExplainLong = "Without a topic, list the available topics. With one, show it."

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagNoColor     = "Disable colored output"
	MsgFlagYes         = "Apply every plan without asking"
	MsgFlagDryRun      = "Show the plans without changing anything"
	MsgFlagFailOnError = "Exit non-zero when any repository failed"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagConfigFmt   = "Configuration format: yaml or toml"
	MsgFlagWrite       = "Write the configuration to this file instead of stdout"
	MsgFlagForce       = "Overwrite an existing file"
	MsgFlagManDir      = "Directory to write man pages to (stdout when empty)"

	// Status messages
	MsgTopicsHeader   = "Available topics:"
	MsgTopicItem      = "  %-10s %s\n"
	MsgTopicsFooter   = "\nRun `dotlinks explain <topic>` to read one."
	MsgConfigWritten  = "Wrote %s\n"
	MsgVersionFormat  = "dotlinks version %s\n  commit: %s\n  built:  %s\n"
	MsgRepoProblem    = "%s · %s: %s\n"
	MsgFailedRepos    = "%d of %d repositories failed"
	MsgNoCommandGiven = "no command specified"

	// Error messages
	MsgErrInitPaths     = "invalid settings"
	MsgErrUnknownFormat = "unknown configuration format %q (want yaml or toml)"
	MsgErrFileExists    = "%s already exists"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)

	//go:embed msgs/apply-example.txt
	msgApplyExampleRaw string
	MsgApplyExample    = strings.TrimRight(msgApplyExampleRaw, "\n")

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/status-example.txt
	msgStatusExampleRaw string
	MsgStatusExample    = strings.TrimRight(msgStatusExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)
)
