package occtl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshapeUsers(t *testing.T) {
	payload := `[
		{
			"ID": 8,
			"Username": "alice",
			"Groupname": "defaults",
			"Hostname": "alice-laptop",
			"Device": "vpns0",
			"Remote IP": "203.0.113.7",
			"User-Agent": "OpenConnect v9.12",
			"_Connected at": 1713086542,
			"Connected at": "2024-04-14 10:02",
			"Average RX": "512 bytes/sec",
			"Average TX": "1024 bytes/sec",
			"RX": "1048576",
			"TX": "2097152"
		}
	]`

	var raw []rawOnlineUser
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	users := reshapeUsers(raw)
	require.Len(t, users, 1)

	u := users[0]
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice-laptop", u.Hostname)
	assert.Equal(t, "vpns0", u.Device)
	assert.Equal(t, "203.0.113.7", u.RemoteIP)
	assert.Equal(t, "OpenConnect v9.12", u.UserAgent)
	assert.Equal(t, "1713086542", u.Since)
	assert.Equal(t, "2024-04-14 10:02", u.ConnectedAt)
	assert.Equal(t, "512 bytes/sec", u.AverageRX)
	assert.Equal(t, "1024 bytes/sec", u.AverageTX)
	assert.Equal(t, uint64(1048576), u.RXBytes)
	assert.Equal(t, uint64(2097152), u.TXBytes)
}

func TestReshapeUsersEmpty(t *testing.T) {
	users := reshapeUsers(nil)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestReshapeBans(t *testing.T) {
	payload := `[
		{"IP": "198.51.100.9", "Since": " 2m:30s", "Score": 80},
		{"IP": "198.51.100.10", "Since": "10s", "Score": "40"}
	]`

	var raw []rawIPBan
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	bans := reshapeBans(raw)
	require.Len(t, bans, 2)
	assert.Equal(t, "198.51.100.9", bans[0].IP)
	assert.Equal(t, int64(80), bans[0].Score)
	assert.Equal(t, "198.51.100.10", bans[1].IP)
	assert.Equal(t, int64(40), bans[1].Score)
}

func TestFlexStringNull(t *testing.T) {
	var raw rawOnlineUser
	require.NoError(t, json.Unmarshal([]byte(`{"Hostname": null, "RX": 42}`), &raw))
	assert.Equal(t, "", string(raw.Hostname))
	assert.Equal(t, uint64(42), parseBytes(string(raw.RX)))
}

func TestParseBytesMalformed(t *testing.T) {
	assert.Equal(t, uint64(0), parseBytes("not-a-number"))
	assert.Equal(t, uint64(0), parseBytes(""))
}
