package occtl

import (
	"bytes"
	"strconv"
)

// flexString unmarshals both JSON strings and bare numbers into a string.
// occtl is not consistent about quoting numeric fields across versions.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		*f = flexString(data[1 : len(data)-1])
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = flexString(data)
	return nil
}

// rawOnlineUser mirrors the field names occtl emits for "show users".
type rawOnlineUser struct {
	Username    flexString `json:"Username"`
	Hostname    flexString `json:"Hostname"`
	Device      flexString `json:"Device"`
	RemoteIP    flexString `json:"Remote IP"`
	UserAgent   flexString `json:"User-Agent"`
	Since       flexString `json:"_Connected at"`
	ConnectedAt flexString `json:"Connected at"`
	AverageRX   flexString `json:"Average RX"`
	AverageTX   flexString `json:"Average TX"`
	RX          flexString `json:"RX"`
	TX          flexString `json:"TX"`
}

// OnlineUser is a connected VPN session in API shape.
type OnlineUser struct {
	Username    string `json:"username"`
	Hostname    string `json:"hostname"`
	Device      string `json:"device"`
	RemoteIP    string `json:"remote_ip"`
	UserAgent   string `json:"user_agent"`
	Since       string `json:"since"`
	ConnectedAt string `json:"connected_at"`
	AverageRX   string `json:"average_rx"`
	AverageTX   string `json:"average_tx"`
	RXBytes     uint64 `json:"rx_bytes"`
	TXBytes     uint64 `json:"tx_bytes"`
}

// rawIPBan mirrors the field names occtl emits for "show ip bans".
type rawIPBan struct {
	IP    flexString `json:"IP"`
	Since flexString `json:"Since"`
	Score flexString `json:"Score"`
}

// IPBan is a banned or scored client address in API shape.
type IPBan struct {
	IP    string `json:"ip"`
	Since string `json:"since"`
	Score int64  `json:"score"`
}

func reshapeUsers(raw []rawOnlineUser) []OnlineUser {
	users := make([]OnlineUser, 0, len(raw))
	for _, r := range raw {
		users = append(users, OnlineUser{
			Username:    string(r.Username),
			Hostname:    string(r.Hostname),
			Device:      string(r.Device),
			RemoteIP:    string(r.RemoteIP),
			UserAgent:   string(r.UserAgent),
			Since:       string(r.Since),
			ConnectedAt: string(r.ConnectedAt),
			AverageRX:   string(r.AverageRX),
			AverageTX:   string(r.AverageTX),
			RXBytes:     parseBytes(string(r.RX)),
			TXBytes:     parseBytes(string(r.TX)),
		})
	}
	return users
}

func reshapeBans(raw []rawIPBan) []IPBan {
	bans := make([]IPBan, 0, len(raw))
	for _, r := range raw {
		score, _ := strconv.ParseInt(string(r.Score), 10, 64)
		bans = append(bans, IPBan{
			IP:    string(r.IP),
			Since: string(r.Since),
			Score: score,
		})
	}
	return bans
}

func parseBytes(raw string) uint64 {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
