package p2p

import "encoding/json"

// MType tags the wire message taxonomy (spec.md §4.8, §6).
type MType string

const (
	QueryLatest             MType = "QueryLatest"
	QueryAll                MType = "QueryAll"
	QueryTransactionPool    MType = "QueryTransactionPool"
	ResponseBlockchain      MType = "ResponseBlockchain"
	ResponseTransactionPool MType = "ResponseTransactionPool"
)

// Message is the tagged envelope every peer exchange uses: content is a
// JSON-encoded payload embedded as a string, or the empty string for
// queries that carry no payload (spec.md §6).
type Message struct {
	MType   MType  `json:"m_type"`
	Content string `json:"content"`
}

// frameTerminator is the single NUL byte every message frame ends with
// on the wire (spec.md §4.7).
const frameTerminator = 0x00

func newMessage(mType MType, payload any) (Message, error) {
	if payload == nil {
		return Message{MType: mType, Content: ""}, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{MType: mType, Content: string(b)}, nil
}
