// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mets_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/metsexport/pkg/config"
	"github.com/walteh/metsexport/pkg/mets"
	"github.com/walteh/metsexport/pkg/testutils"
)

func TestParse(t *testing.T) {
	_, err := mets.Parse([]byte(`<root/>`))
	require.Error(t, err, "non METS root should be rejected")

	_, err = mets.Parse([]byte(`<mets:mets`))
	require.Error(t, err, "broken XML should be rejected")

	doc, err := mets.Parse([]byte(testutils.MonographMETS))
	require.NoError(t, err)
	assert.Len(t, doc.DescriptiveSections(), 1)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name        string
		fixture     string
		wantPrimary string
		wantAnchor  string
		wantIDs     map[string]string
		wantAnchIDs map[string]string
	}{
		{
			name:        "monograph",
			fixture:     testutils.MonographMETS,
			wantPrimary: "Monograph",
			wantIDs:     map[string]string{"CatalogIDDigital": "PPN123", "CatalogIDSource": "PPN456"},
		},
		{
			name:        "anchored_volume",
			fixture:     testutils.VolumeMETS,
			wantPrimary: "PeriodicalVolume",
			wantAnchor:  "Periodical",
			wantIDs:     map[string]string{"CatalogIDDigital": "PPN123", "CatalogIDSource": "PPN456"},
			wantAnchIDs: map[string]string{"CatalogIDDigital": "PPN900", "CatalogIDSource": "PPN901"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := mets.Parse([]byte(tt.fixture))
			require.NoError(t, err)

			st, err := doc.Split(config.DefaultAnchorTypes)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrimary, st.Primary.Type())
			for field, want := range tt.wantIDs {
				got, ok := st.Primary.Field(field)
				assert.True(t, ok, "primary should carry %s", field)
				assert.Equal(t, want, got)
			}

			if tt.wantAnchor == "" {
				assert.Nil(t, st.Anchor)
				return
			}
			require.NotNil(t, st.Anchor)
			assert.Equal(t, tt.wantAnchor, st.Anchor.Type())
			for field, want := range tt.wantAnchIDs {
				got, ok := st.Anchor.Field(field)
				assert.True(t, ok, "anchor should carry %s", field)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestSplitWithoutAnchorTypes(t *testing.T) {
	doc, err := mets.Parse([]byte(testutils.VolumeMETS))
	require.NoError(t, err)

	st, err := doc.Split(nil)
	require.NoError(t, err)
	assert.Nil(t, st.Anchor, "no anchor types means the root is primary")
	assert.Equal(t, "Periodical", st.Primary.Type())
}

func TestFieldMissing(t *testing.T) {
	doc, err := mets.Parse([]byte(testutils.MonographMETS))
	require.NoError(t, err)
	root, err := doc.LogicalRoot()
	require.NoError(t, err)

	_, ok := root.Field("shelfmark")
	assert.False(t, ok)
}

func TestLogicalRootMissing(t *testing.T) {
	doc, err := mets.Parse([]byte(`<mets:mets xmlns:mets="http://www.loc.gov/METS/"/>`))
	require.NoError(t, err)
	_, err = doc.LogicalRoot()
	require.ErrorIs(t, err, mets.ErrNoLogicalRoot)
}

func TestPrepareMonograph(t *testing.T) {
	doc, err := mets.Parse([]byte(testutils.MonographMETS))
	require.NoError(t, err)

	pkg, err := doc.Prepare(config.DefaultAnchorTypes, "obj_anchor.xml")
	require.NoError(t, err)
	assert.Nil(t, pkg.Anchor)

	root, err := pkg.Primary.LogicalRoot()
	require.NoError(t, err)
	title, _ := root.Field("TitleDocMain")
	assert.Equal(t, "Die Reise", title, "values should be trimmed")

	orig, err := doc.LogicalRoot()
	require.NoError(t, err)
	origTitle, _ := orig.Field("TitleDocMain")
	assert.Equal(t, "  Die Reise  ", origTitle, "source document is untouched")
}

func TestPrepareAnchored(t *testing.T) {
	doc, err := mets.Parse([]byte(testutils.VolumeMETS))
	require.NoError(t, err)

	pkg, err := doc.Prepare(config.DefaultAnchorTypes, "obj_anchor.xml")
	require.NoError(t, err)
	require.NotNil(t, pkg.Anchor)

	// primary keeps only the volume section and points at the anchor file
	secs := pkg.Primary.DescriptiveSections()
	require.Len(t, secs, 1)
	assert.Equal(t, "DMDLOG_0001", secs[0].SelectAttrValue("ID", ""))

	data, err := pkg.Primary.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), `xlink:href="obj_anchor.xml"`)
	assert.Contains(t, string(data), `xmlns:xlink="http://www.w3.org/1999/xlink"`)

	// anchor keeps only its own section and logical map
	secs = pkg.Anchor.DescriptiveSections()
	require.Len(t, secs, 1)
	assert.Equal(t, "DMDLOG_0000", secs[0].SelectAttrValue("ID", ""))

	data, err = pkg.Anchor.Bytes()
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "PHYSICAL")
	assert.NotContains(t, out, "fileSec")
	assert.NotContains(t, out, "DMDLOG_0001")

	anchorRoot, err := pkg.Anchor.LogicalRoot()
	require.NoError(t, err)
	id, ok := anchorRoot.Field("CatalogIDDigital")
	assert.True(t, ok)
	assert.Equal(t, "PPN900", id)
}

func TestBytesRoundTrip(t *testing.T) {
	doc, err := mets.Parse([]byte(testutils.MonographMETS))
	require.NoError(t, err)

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<?xml"))

	again, err := mets.Parse(data)
	require.NoError(t, err)
	assert.Len(t, again.DescriptiveSections(), 1)
}
