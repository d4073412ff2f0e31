package handler

import (
	"encoding/json"
	"fmt"
)

// jsonCodec はメッセージを protobuf ではなく通常の Go 構造体として JSON で読み書きする Connect のコーデックです
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string { return c.name }

func (c jsonCodec) Marshal(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return b, nil
}

func (c jsonCodec) Unmarshal(data []byte, msg any) error {
	// 空のボディは空のメッセージとして扱う
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}
