package app

// Key binding constants used in handleKey.
const (
	KeyQuit           = "ctrl+c"
	KeyTab            = "tab"
	KeyEnter          = "enter"
	KeySpace          = " "
	KeyNextCard       = "j"
	KeyPrevCard       = "k"
	KeyFlipAll        = "f"
	KeyCopy           = "c"
	KeyExportCSV      = "e"
	KeyToggleTrans    = "t"
	KeyCopyTranscript = "T"
	KeyCopyDigest     = "d"
)
