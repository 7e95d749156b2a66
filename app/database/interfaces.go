package database

import (
	"github.com/lysyi3m/rss-relay/app/dedup"
	"github.com/lysyi3m/rss-relay/app/rejects"
)

var (
	_ dedup.Store = (*SeenKeyRepository)(nil)
	_ rejects.Log = (*RejectRepository)(nil)
)

const (
	keyKindLink  = "link"
	keyKindTitle = "title"
)
