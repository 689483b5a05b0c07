package share

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint derives the share token for a host/playlist pair. The same
// pair always maps to the same token, so re-registering replaces the
// existing session instead of minting a second link.
func Fingerprint(hostID, playlistID string) string {
	sum := md5.Sum([]byte(hostID + playlistID))
	return hex.EncodeToString(sum[:])
}
