// Package lexeme defines the normalized output schema shared by every stage
// of the cleaning pipeline, and the error taxonomy of a run.
package lexeme

import "github.com/hazyhaar/wuyu-lexeme/pkg/table"

// Canonical output column names.
const (
	ColPointID         = "point_id"
	ColPointName       = "point_name"
	ColSubbranch       = "subbranch"
	ColLat             = "lat"
	ColLon             = "lon"
	ColRhymeModern     = "rhyme_modern"
	ColChainSlot       = "chain_slot"
	ColSlotTypeInitial = "slot_type_initial"
	ColIsFree          = "is_free"
	ColOnsetClass      = "onset_class"
	ColChar            = "char"
	ColPhonetic        = "phonetic"
	ColVowelSymbol     = "vowel_symbol"
	ColVowelClass      = "vowel_class"
	ColReadingLayer    = "reading_layer"
	ColMainlayerFlag   = "mainlayer_flag"
	ColComboValidity   = "combo_validity"
	ColZeroType        = "zero_type"
	ColFeatureChange   = "feature_change"
)

// Columns is the fixed output order of a clean lexeme table.
var Columns = []string{
	ColPointID, ColPointName, ColSubbranch, ColLat, ColLon,
	ColRhymeModern, ColChainSlot, ColSlotTypeInitial, ColIsFree,
	ColOnsetClass,
	ColChar, ColPhonetic, ColVowelSymbol, ColVowelClass,
	ColReadingLayer, ColMainlayerFlag,
	ColComboValidity, ColZeroType,
	ColFeatureChange,
}

// PointColumns are the point-identity columns a multi-point source carries inline.
var PointColumns = []string{ColPointID, ColPointName, ColSubbranch, ColLat, ColLon}

// CleanRecord is a typed view of one output row. Nil means null.
type CleanRecord struct {
	PointID         *string
	PointName       *string
	Subbranch       *string
	Lat             *string
	Lon             *string
	RhymeModern     *string
	ChainSlot       *string
	SlotTypeInitial *string
	IsFree          *string
	OnsetClass      *string
	Char            *string
	Phonetic        *string
	VowelSymbol     *string
	VowelClass      *string
	ReadingLayer    *string
	MainlayerFlag   *string
	ComboValidity   *string
	ZeroType        *string
	FeatureChange   *string
}

// RecordsFromTable converts an assembled table into CleanRecords.
// Columns absent from t leave the matching field nil.
func RecordsFromTable(t *table.Table) []CleanRecord {
	out := make([]CleanRecord, len(t.Rows))
	for i, row := range t.Rows {
		get := func(col string) *string {
			c := t.Get(row, col)
			if !c.Valid {
				return nil
			}
			v := c.Value
			return &v
		}
		out[i] = CleanRecord{
			PointID:         get(ColPointID),
			PointName:       get(ColPointName),
			Subbranch:       get(ColSubbranch),
			Lat:             get(ColLat),
			Lon:             get(ColLon),
			RhymeModern:     get(ColRhymeModern),
			ChainSlot:       get(ColChainSlot),
			SlotTypeInitial: get(ColSlotTypeInitial),
			IsFree:          get(ColIsFree),
			OnsetClass:      get(ColOnsetClass),
			Char:            get(ColChar),
			Phonetic:        get(ColPhonetic),
			VowelSymbol:     get(ColVowelSymbol),
			VowelClass:      get(ColVowelClass),
			ReadingLayer:    get(ColReadingLayer),
			MainlayerFlag:   get(ColMainlayerFlag),
			ComboValidity:   get(ColComboValidity),
			ZeroType:        get(ColZeroType),
			FeatureChange:   get(ColFeatureChange),
		}
	}
	return out
}
