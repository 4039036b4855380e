package pipeline

import (
	"fmt"
	"strings"

	"recipediff/internal"
)

type LabelSet struct {
	Lang string

	Yes string
	No  string

	LeftOnly        string
	RightOnly       string
	Consistent      string
	QuantityDiffers string
	UnitDiffers     string
	Separator       string

	LeftSuffix  string
	RightSuffix string

	ColumnSource        string
	ColumnProvenance    string
	ColumnSKUMatch      string
	ColumnQuantityMatch string
	ColumnUnitMatch     string
	ColumnSummary       string
}

var EnglishLabels = LabelSet{
	Lang:                "en",
	Yes:                 "yes",
	No:                  "no",
	LeftOnly:            "present only on left",
	RightOnly:           "present only on right",
	Consistent:          "consistent",
	QuantityDiffers:     "quantity differs",
	UnitDiffers:         "unit differs",
	Separator:           "; ",
	LeftSuffix:          "_left",
	RightSuffix:         "_right",
	ColumnSource:        "source",
	ColumnProvenance:    "provenance",
	ColumnSKUMatch:      "sku_match",
	ColumnQuantityMatch: "quantity_match",
	ColumnUnitMatch:     "unit_match",
	ColumnSummary:       "summary",
}

var ChineseLabels = LabelSet{
	Lang:                "zh",
	Yes:                 "是",
	No:                  "否",
	LeftOnly:            "仅餐厅有",
	RightOnly:           "仅供应链有",
	Consistent:          "一致",
	QuantityDiffers:     "用量不同",
	UnitDiffers:         "单位不同",
	Separator:           "；",
	LeftSuffix:          "_餐厅",
	RightSuffix:         "_供应链",
	ColumnSource:        "来源",
	ColumnProvenance:    "匹配状态",
	ColumnSKUMatch:      "SKU是否一致",
	ColumnQuantityMatch: "用量是否一致",
	ColumnUnitMatch:     "单位是否一致",
	ColumnSummary:       "差异类型说明",
}

func LabelsFor(lang string) (LabelSet, error) {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "en":
		return EnglishLabels, nil
	case "zh", "":
		return ChineseLabels, nil
	default:
		return LabelSet{}, fmt.Errorf("unsupported report language: %s", lang)
	}
}

func (l LabelSet) Flag(v bool) string {
	if v {
		return l.Yes
	}
	return l.No
}

func (l LabelSet) Summary(rec internal.ReconciledRecord) string {
	switch rec.Provenance {
	case internal.LeftOnly:
		return l.LeftOnly
	case internal.RightOnly:
		return l.RightOnly
	}
	if len(rec.Differences) == 0 {
		return l.Consistent
	}
	parts := make([]string, 0, len(rec.Differences))
	for _, d := range rec.Differences {
		switch d {
		case internal.DiffQuantity:
			parts = append(parts, l.QuantityDiffers)
		case internal.DiffUnit:
			parts = append(parts, l.UnitDiffers)
		}
	}
	return strings.Join(parts, l.Separator)
}
