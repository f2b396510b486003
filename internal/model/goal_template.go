package model

import (
	"time"
)

const (
	CreationMethodAutomatic = "Automatic"
	CreationMethodCurated   = "Curated"
)

type GoalTemplate struct {
	ID             int64      `db:"id" json:"id"`
	Hash           string     `db:"hash" json:"hash"`
	TemplateName   string     `db:"template_name" json:"templateName"`
	RegionID       int64      `db:"region_id" json:"regionId"`
	CreationMethod string     `db:"creation_method" json:"creationMethod"`
	LastUsed       *time.Time `db:"last_used" json:"lastUsed"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

type ObjectiveTemplate struct {
	ID             int64      `db:"id" json:"id"`
	Hash           string     `db:"hash" json:"hash"`
	TemplateTitle  string     `db:"template_title" json:"templateTitle"`
	RegionID       int64      `db:"region_id" json:"regionId"`
	CreationMethod string     `db:"creation_method" json:"creationMethod"`
	LastUsed       *time.Time `db:"last_used" json:"lastUsed"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}
