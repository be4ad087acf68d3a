package model

const RegistryMetaId = "registry"

type RegistryMeta struct {
	Id                 string `json:"id" gorm:"column:id;primaryKey;size:64"`
	Writable           bool   `json:"writable" gorm:"column:writable"`
	LastDiskStateSeqNo uint64 `json:"last_disk_state_seq_no" gorm:"column:last_disk_state_seq_no"`
}

func (RegistryMeta) TableName() string {
	return "registry_meta"
}

func (m *RegistryMeta) Clone() *RegistryMeta {
	c := *m
	return &c
}
