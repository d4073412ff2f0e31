package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexString は文字列でも数値でも受け付ける文字列です
// isbn や id が数値で保存されているレコードがあるため使用します
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(n.String())
	return nil
}

// flexNumber は数値でも数値文字列でも受け付ける数値です
// 入力欄の値が文字列のまま保存されているレコードがあるため使用します
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		v = strings.TrimSpace(v)
		if v == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("invalid number %q", v)
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

// optNumber は省略可能な数値です
// null と空文字列（未入力のフォーム値）はどちらも「値なし」として扱い、書き込み時は null になります
type optNumber struct {
	valid bool
	value float64
}

func (n *optNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = optNumber{}
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if strings.TrimSpace(v) == "" {
			*n = optNumber{}
			return nil
		}
	}
	var f flexNumber
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	*n = optNumber{valid: true, value: float64(f)}
	return nil
}

func (n optNumber) MarshalJSON() ([]byte, error) {
	if !n.valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// IsZero は omitzero 用です
func (n optNumber) IsZero() bool { return !n.valid }

func optFrom(f *float64) optNumber {
	if f == nil {
		return optNumber{}
	}
	return optNumber{valid: true, value: *f}
}

func (n optNumber) ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}
