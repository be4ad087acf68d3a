package sid

import (
	"hash/fnv"
	"os"

	"github.com/duke-git/lancet/v2/convertor"
	"github.com/sony/sonyflake"
)

type Sid struct {
	sf *sonyflake.Sonyflake
}

func NewSid() *Sid {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{MachineID: machineID})
	if sf == nil {
		panic("sonyflake not created")
	}
	return &Sid{sf}
}

// machineID 基于主机名生成，避免容器内没有私有 IP 时 sonyflake 初始化失败
func machineID() (uint16, error) {
	host, err := os.Hostname()
	if err != nil {
		return 0, err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return uint16(h.Sum32()), nil
}

func (s Sid) GenString() (string, error) {
	id, err := s.sf.NextID()
	if err != nil {
		return "", err
	}
	return convertor.ToString(id), nil
}

func (s Sid) GenUint64() (uint64, error) {
	return s.sf.NextID()
}
