// Package models contains the data models for the lnkgen API.
package models

import (
	"time"
)

// RouteScript is one generated route setup script kept in the archive.
type RouteScript struct {
	ID           int64     `db:"id" json:"-"`
	UUID         string    `db:"uuid" json:"id"`
	BatchID      *string   `db:"batch_id" json:"batch_id,omitempty"`
	Route        int       `db:"route" json:"route"`
	RxRate       int       `db:"rx_rate" json:"rx_rate"`
	RxWordLength int       `db:"rx_word_length" json:"rx_word_length"`
	TxRate       int       `db:"tx_rate" json:"tx_rate"`
	TxWordLength int       `db:"tx_word_length" json:"tx_word_length"`
	FrameSize    float64   `db:"frame_size" json:"frame_size"`
	FrameRate    int       `db:"frame_rate" json:"frame_rate"`
	Rows         int       `db:"frame_rows" json:"rows"`
	Cols         int       `db:"frame_cols" json:"cols"`
	FrameControl int       `db:"frame_control" json:"frame_control"`
	FrameCount   int       `db:"frame_count" json:"frame_count"`
	FileName     string    `db:"file_name" json:"file_name"`
	Content      string    `db:"content" json:"-"` // Rendered XML, served separately
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
