package schema

// ProgramVersion is the program version as filled in by the Makefile.
var ProgramVersion = "devel"

const (
	ExitCodeSuccess        int = 0
	ExitCodeCommandFailure int = 1 // ErrExitCommandFailure
	ExitCodeBadInvocation  int = 2 // ErrExitBadInvocation
	ExitCodeSpawnFailure   int = 3 // ErrExitSpawnFailure
	ExitCodeNotReady       int = 4 // ErrExitNotReady
	ExitCodeUnclassified   int = 5 // ErrExitUnclassified

	IgnoreFile    string = ".execwalk-ignore"
	IgnoreAllFile string = ".execwalk-ignore-all"

	ReportExtension string = ".json"

	EntryKindDirs  string = "dirs"
	EntryKindFiles string = "files"
	EntryKindAll   string = "all"

	WalkerNative    string = "native"
	WalkerAfero     string = "afero"
	WalkerGodirwalk string = "godirwalk"
)

type ctxKey int

const (
	PosKey ctxKey = iota
)
