package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Of 计算对象的内容哈希
// volatile 中的顶层字段不参与计算（如 seq_number、node_id 这类每次注册都会变化的字段）
func Of(obj interface{}, volatile ...string) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	if len(volatile) > 0 {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return "", err
		}
		for _, f := range volatile {
			delete(fields, f)
		}
		// map 序列化时 key 有序，结果稳定
		if data, err = json.Marshal(fields); err != nil {
			return "", err
		}
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
