package constants

// CLIName is the name used in user-facing output to refer to the CLI
const CLIName = "ifcheck"

// Default block markers recognized by the balance checker
const (
	DefaultOpenMarker  = "if"
	DefaultCloseMarker = "fi"
)

// DefaultBranchMarkers are the keywords that may only appear inside an open block
// when strict branch checking is enabled
var DefaultBranchMarkers = []string{"else", "elif"}

// Process exit codes
const (
	ExitValid   = 0 // structure is balanced
	ExitInvalid = 1 // file was checked and found unbalanced
	ExitUsage   = 2 // file could not be checked (usage, config or access error)
)

// ValidMessage is printed when a file has no structural errors
const ValidMessage = "Structure seems valid."
