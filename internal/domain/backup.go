package domain

import (
	"encoding/json"
	"time"
)

// Collection names accepted by the backup service.
const (
	CollectionUsers    = "User"
	CollectionTeams    = "Team"
	CollectionProjects = "Project"
)

// BackupRecord is an immutable snapshot of one or more documents taken
// before a destructive write. Records are only ever created and read,
// never updated.
type BackupRecord struct {
	ID             string            `json:"id"`
	CollectionName string            `json:"collectionName"`
	Data           []json.RawMessage `json:"data"`
	DeletedItemIDs []string          `json:"deletedItems"`
	BackupReason   string            `json:"backupReason"`
	BackupSize     int64             `json:"backupSize"`
	SizeFormatted  string            `json:"sizeFormatted"`
	CreatedAt      time.Time         `json:"createdAt"`
}
