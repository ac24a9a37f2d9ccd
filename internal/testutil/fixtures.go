package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleDeck is a small schedule with four report steps and two actions.
//
//	step 0  1 JAN 2020  START  RPTRST, ACTIONX CUT_WATER
//	step 1 11 JAN 2020  TSTEP
//	step 2 21 JAN 2020  TSTEP  ACTIONX GAS_LIMIT
//	step 3  1 FEB 2020  DATES  WCONPROD
const SampleDeck = `filename: CASE.DATA
keywords:
  - name: START
    records:
      - [1, JAN, 2020]
  - name: SCHEDULE
  - name: RPTRST
    records:
      - [BASIC=2]
  - name: ACTIONX
    records:
      - [CUT_WATER, 2, 5]
      - [WWCT, "'OP*'", ">", "0.5", AND]
      - [FOPR, ">", "100"]
  - name: WELPI
    records:
      - ["'?'", "200"]
  - name: ENDACTIO
  - name: TSTEP
    records:
      - ["2*10"]
  - name: ACTIONX
    records:
      - [GAS_LIMIT]
      - [FGOR, ">", "1000"]
  - name: WELOPEN
    records:
      - [OP1, SHUT]
  - name: ENDACTIO
  - name: DATES
    records:
      - [1, FEB, 2020]
  - name: WCONPROD
    records:
      - [OP1, OPEN, ORAT, "1000"]
`

// SampleSnapshot satisfies CUT_WATER for OP1 and OP3 but not GAS_LIMIT.
const SampleSnapshot = `time: 2020-01-21
wells: [OP1, OP2, OP3]
wellLists:
  PROD: [OP1, OP2]
values:
  FOPR: 150
  FGOR: 500
entities:
  WWCT: {OP1: 0.9, OP2: 0.1, OP3: 0.6}
`

// WriteFile writes content to name inside a per-test temporary directory
// and returns the full path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// WriteSampleDeck writes SampleDeck and returns its path.
func WriteSampleDeck(t *testing.T) string {
	t.Helper()

	return WriteFile(t, "CASE.yaml", SampleDeck)
}
