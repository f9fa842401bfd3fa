package model

// ThumbnailJob is the work item connecting an image upload to background
// thumbnail generation. It is ephemeral: persisted only inside the job
// queue, never in the metadata store.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}
