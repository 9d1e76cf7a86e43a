package remote

import "time"

// State is the coarse sync indicator.
type State string

const (
	Offline State = "offline"
	Syncing State = "syncing"
	Online  State = "online"
)

// Message codes, translated by the i18n catalog.
const (
	MsgUploading   = "sync.uploading"
	MsgDownloading = "sync.downloading"
	MsgOnline      = "sync.online"
	MsgOffline     = "sync.offline"
)

// Status is what the sync indicator shows.
type Status struct {
	Enabled   bool      `json:"enabled"`
	State     State     `json:"state"`
	Message   string    `json:"message"`
	At        time.Time `json:"at,omitzero"`
	LastError string    `json:"lastError,omitempty"`
}
