package indexer

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primary_key" json:"id"`
	Height uint64 `json:"height"`
}

type Instance struct {
	Address        string `gorm:"primary_key" json:"address"`
	InstanceIndex  uint64 `json:"index"`
	Creator        string `gorm:"index" json:"creator"`
	Metadata       string `json:"metadata"`
	Height         uint64 `json:"height"`
	MetadataHeight uint64 `json:"metadata_height"`
}

type Admin struct {
	Id      uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Unit    string `gorm:"index" json:"unit"`
	Address string `json:"address"`
	Height  uint64 `json:"height"`
}

type CredentialType struct {
	Id       uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Issuer   string `gorm:"index" json:"issuer"`
	TypeId   uint64 `json:"type_id"`
	Name     string `json:"name"`
	Metadata string `json:"metadata"`
	IsOpen   bool   `json:"is_open"`
	Height   uint64 `json:"height"`
}

type Allowlist struct {
	Id      uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Issuer  string `gorm:"index" json:"issuer"`
	TypeId  uint64 `json:"type_id"`
	Address string `json:"address"`
	Height  uint64 `json:"height"`
}

type Credential struct {
	Id       uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Issuer   string `gorm:"index" json:"issuer"`
	TypeId   uint64 `json:"type_id"`
	Holder   string `gorm:"index" json:"holder"`
	Operator string `json:"operator"`
	Height   uint64 `json:"height"`
}

type Vote struct {
	Address       string `gorm:"primary_key" json:"address"`
	Unit          string `gorm:"index" json:"unit"`
	VoteIndex     uint64 `json:"index"`
	Prompt        string `json:"prompt"`
	Options       string `json:"options"`
	VotingEnd     uint64 `json:"voting_end"`
	RequiredTypes string `json:"required_types"`
	Height        uint64 `json:"height"`
}

type Ballot struct {
	Id     uint64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Vote   string `gorm:"index" json:"vote"`
	Voter  string `json:"voter"`
	Option uint64 `json:"option"`
	Height uint64 `json:"height"`
}
