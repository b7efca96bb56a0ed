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

// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/walteh/metsexport/pkg/storage"
)

// MonographMETS is a single unit object with both catalogue identifiers
const MonographMETS = `<?xml version="1.0" encoding="UTF-8"?>
<mets:mets xmlns:mets="http://www.loc.gov/METS/" xmlns:mods="http://www.loc.gov/mods/v3" xmlns:goobi="http://meta.goobi.org/v1.5.1/">
  <mets:dmdSec ID="DMDLOG_0000">
    <mets:mdWrap MDTYPE="MODS">
      <mets:xmlData>
        <mods:mods>
          <mods:extension>
            <goobi:goobi>
              <goobi:metadata name="TitleDocMain">  Die Reise  </goobi:metadata>
              <goobi:metadata name="CatalogIDDigital">PPN123</goobi:metadata>
              <goobi:metadata name="CatalogIDSource">PPN456</goobi:metadata>
              <goobi:metadata name="status">ready</goobi:metadata>
            </goobi:goobi>
          </mods:extension>
        </mods:mods>
      </mets:xmlData>
    </mets:mdWrap>
  </mets:dmdSec>
  <mets:structMap TYPE="LOGICAL">
    <mets:div ID="LOG_0000" TYPE="Monograph" DMDID="DMDLOG_0000"/>
  </mets:structMap>
  <mets:structMap TYPE="PHYSICAL">
    <mets:div ID="PHYS_0000" TYPE="physSequence"/>
  </mets:structMap>
</mets:mets>
`

// VolumeMETS is a periodical volume below its anchor
const VolumeMETS = `<?xml version="1.0" encoding="UTF-8"?>
<mets:mets xmlns:mets="http://www.loc.gov/METS/" xmlns:mods="http://www.loc.gov/mods/v3" xmlns:goobi="http://meta.goobi.org/v1.5.1/">
  <mets:dmdSec ID="DMDLOG_0000">
    <mets:mdWrap MDTYPE="MODS">
      <mets:xmlData>
        <mods:mods>
          <mods:extension>
            <goobi:goobi>
              <goobi:metadata name="TitleDocMain">Tageblatt</goobi:metadata>
              <goobi:metadata name="CatalogIDDigital">PPN900</goobi:metadata>
              <goobi:metadata name="CatalogIDSource">PPN901</goobi:metadata>
            </goobi:goobi>
          </mods:extension>
        </mods:mods>
      </mets:xmlData>
    </mets:mdWrap>
  </mets:dmdSec>
  <mets:dmdSec ID="DMDLOG_0001">
    <mets:mdWrap MDTYPE="MODS">
      <mets:xmlData>
        <mods:mods>
          <mods:extension>
            <goobi:goobi>
              <goobi:metadata name="TitleDocMain">Jahrgang 1901</goobi:metadata>
              <goobi:metadata name="CatalogIDDigital">PPN123</goobi:metadata>
              <goobi:metadata name="CatalogIDSource">PPN456</goobi:metadata>
              <goobi:metadata name="status">ready</goobi:metadata>
            </goobi:goobi>
          </mods:extension>
        </mods:mods>
      </mets:xmlData>
    </mets:mdWrap>
  </mets:dmdSec>
  <mets:fileSec>
    <mets:fileGrp USE="LOCAL"/>
  </mets:fileSec>
  <mets:structMap TYPE="LOGICAL">
    <mets:div ID="LOG_0000" TYPE="Periodical" DMDID="DMDLOG_0000">
      <mets:div ID="LOG_0001" TYPE="PeriodicalVolume" DMDID="DMDLOG_0001"/>
    </mets:div>
  </mets:structMap>
  <mets:structMap TYPE="PHYSICAL">
    <mets:div ID="PHYS_0000" TYPE="physSequence"/>
  </mets:structMap>
</mets:mets>
`

// WithStatus swaps the status field value of a fixture
func WithStatus(doc, status string) string {
	return strings.Replace(doc, `name="status">ready<`, fmt.Sprintf(`name="status">%s<`, status), 1)
}

// MarcRecord returns a MARCXML fragment whose control number is id
func MarcRecord(id string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<marc:record xmlns:marc="http://www.loc.gov/MARC21/slim">
  <marc:leader>00000nam a2200000 c 4500</marc:leader>
  <marc:controlfield tag="001">%s</marc:controlfield>
</marc:record>
`, id)
}

// Context returns a context carrying a logger that writes to the test output
func Context(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.TraceLevel)
	return logger.WithContext(context.Background())
}

// Seed writes files into st, keyed by absolute path. A trailing slash creates a directory.
func Seed(t *testing.T, ctx context.Context, st storage.Storage, files map[string]string) {
	t.Helper()
	for p, content := range files {
		if strings.HasSuffix(p, "/") {
			require.NoError(t, st.CreateDirectories(ctx, strings.TrimSuffix(p, "/")), "creating %s", p)
			continue
		}
		require.NoError(t, st.WriteFile(ctx, p, []byte(content)), "writing %s", p)
	}
}
