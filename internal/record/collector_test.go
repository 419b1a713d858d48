package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping() FieldMapping {
	return FieldMapping{
		Handle: "Handle",
		Sources: []FieldSource{
			{Name: "title", Column: "Title", Kind: KindText},
			{Name: "body", Column: "Body HTML", Kind: KindHTML},
		},
		Metadata: MetadataColumns{
			Material: "Material",
			Size:     "Size",
			Vendor:   "Vendor",
			Type:     "Type",
		},
		Dimensions: DimensionColumns{Width: "Width", Height: "Height", Depth: "Depth"},
		SpecList:   "Spec List",
	}
}

func TestCollect(t *testing.T) {
	row := map[string]string{
		"Handle":    "kettle-1",
		"Title":     "Electric Kettle",
		"Body HTML": "<p>1.7 liters</p>",
		"Material":  "Stainless Steel",
		"Vendor":    "Salton",
		"Width":     "8in",
		"Height":    "10in",
		"Spec List": `["Material: Glass"]`,
	}

	rec := Collect(row, testMapping())
	assert.Equal(t, "kettle-1", rec.Handle)
	require.Len(t, rec.Fields, 2)
	assert.Equal(t, SourceField{Name: "title", Raw: "Electric Kettle", Kind: KindText}, rec.Fields[0])
	assert.Equal(t, "Stainless Steel", rec.Metadata.Material)
	assert.Equal(t, "Salton", rec.Metadata.Brand)
	assert.Equal(t, "", rec.Metadata.Size)
	assert.Equal(t, Dimensions{Width: "8in", Height: "10in"}, rec.Dimensions)
	assert.Equal(t, []string{"Material: Glass"}, rec.ExistingSpecs)
}

func TestCollect_SkipsEmptyFields(t *testing.T) {
	row := map[string]string{
		"Handle":    "sparse-1",
		"Title":     "   ",
		"Body HTML": "<p>text</p>",
	}
	rec := Collect(row, testMapping())
	require.Len(t, rec.Fields, 1)
	assert.Equal(t, "body", rec.Fields[0].Name)
}

func TestCollectVariant(t *testing.T) {
	row := map[string]string{
		"Material": "Ceramic",
		"Width":    "4in",
	}
	v := CollectVariant("sparse-1#1", row, testMapping())
	assert.Equal(t, "sparse-1#1", v.Key)
	assert.Equal(t, "Ceramic", v.Metadata.Material)
	assert.Equal(t, "4in", v.Dimensions.Width)
	assert.Empty(t, v.ExistingSpecs)
}

func TestParseSpecList(t *testing.T) {
	assert.Nil(t, ParseSpecList(""))
	assert.Nil(t, ParseSpecList("   "))
	assert.Equal(t, []string{"Material: Steel", "Capacity: 2 l"},
		ParseSpecList(`["Material: Steel", "Capacity: 2 l"]`))
	// A bare cell counts as a single-entry list.
	assert.Equal(t, []string{"Material: Steel"}, ParseSpecList("Material: Steel"))
	// Invalid JSON arrays fall back to bare-cell handling.
	assert.Equal(t, []string{"[broken"}, ParseSpecList("[broken"))
}

func TestParseSpecList_DropsEmptyEntries(t *testing.T) {
	assert.Equal(t, []string{"Material: Steel"}, ParseSpecList(`["", "Material: Steel", ""]`))
}

func TestEncodeSpecList(t *testing.T) {
	assert.Equal(t, "", EncodeSpecList(nil))
	assert.Equal(t, `["Material: Steel"]`, EncodeSpecList([]string{"Material: Steel"}))
}

func TestDimensions(t *testing.T) {
	assert.False(t, Dimensions{}.Present())
	assert.True(t, Dimensions{Height: "5in"}.Present())

	assert.Equal(t, "10in x 5in x 3in", Dimensions{Width: "10in", Height: "5in", Depth: "3in"}.Format())
	// Absent components leave no stray separators.
	assert.Equal(t, "10in x 5in", Dimensions{Width: "10in", Height: "5in"}.Format())
	assert.Equal(t, "3in", Dimensions{Depth: "3in"}.Format())
}

func TestMetadataCandidates(t *testing.T) {
	m := Metadata{Material: "Glass", Brand: "Acme"}
	cands := m.Candidates(RankProductMeta)
	require.Len(t, cands, 2)
	assert.Equal(t, SpecCandidate{Key: "Material", Value: "Glass", SourceRank: RankProductMeta}, cands[0])
	assert.Equal(t, SpecCandidate{Key: "Brand", Value: "Acme", SourceRank: RankProductMeta}, cands[1])
}
