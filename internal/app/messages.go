package app

import "github.com/ben05-coder/rizq/internal/api"

// IngestDoneMsg is the settlement of an upload-and-process operation.
// Seq ties it to the start that issued it; settlements carrying a
// stale sequence are dropped.
type IngestDoneMsg struct {
	Seq    int
	Result *api.IngestResult
	Err    *api.Error
}

// SearchDoneMsg is the settlement of a search operation.
type SearchDoneMsg struct {
	Seq    int
	Result *api.SearchResult
	Err    *api.Error
}

// NoticeMsg shows a transient acknowledgement ("Copied!" etc).
type NoticeMsg struct {
	Text string
}

// ClearNoticeMsg clears the transient acknowledgement after a timeout.
type ClearNoticeMsg struct{}
