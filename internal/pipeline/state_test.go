package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

func TestMachineTransitions(t *testing.T) {
	m := NewMachine()
	require.Error(t, m.Advance(Merging))
	for _, s := range []State{ScrapingBasic, ScrapingSpecialized, ScrapingPDF, Merging, Reporting, Done} {
		require.NoError(t, m.Advance(s), "advance to %s", s)
	}
	require.Equal(t, Done, m.State())
	require.False(t, m.HasFailed())
	require.Error(t, m.Advance(Failed))
	require.Error(t, m.Advance(Idle))
}

func TestMachineFailedRunEndsFailed(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Advance(ScrapingBasic))
	require.NoError(t, m.Advance(Failed))
	require.Error(t, m.Advance(Persisting))
	require.NoError(t, m.Advance(Exporting))
	require.NoError(t, m.Advance(Reporting))
	require.NoError(t, m.Advance(Done))
	require.Equal(t, Failed, m.State())
	require.True(t, m.HasFailed())
	require.Equal(t, []State{Idle, ScrapingBasic, Failed, Exporting, Reporting, Failed}, m.History())
}

func TestSummarize(t *testing.T) {
	var procs []entity.Procedure
	for i := 0; i < 12; i++ {
		procs = append(procs, entity.Procedure{
			Name:            fmt.Sprintf("p%02d", i),
			EntityCode:      []string{"SUNAT", "RENIEC"}[i%2],
			Category:        "tributario",
			DifficultyLevel: "easy",
			Cost:            float64(i % 6 * 10),
			IsFree:          i%6 == 0,
			IsOnline:        i < 3,
		})
	}
	procs = append(procs, entity.Procedure{Name: "sin codigo", EntityName: "Municipalidad", Category: "municipal", DifficultyLevel: "hard", IsFree: true})

	a := Summarize(procs)
	require.Equal(t, 13, a.Total)
	require.Equal(t, 3, a.Free)
	require.Equal(t, 3, a.Online)
	require.Equal(t, map[string]int{"SUNAT": 6, "RENIEC": 6, "Municipalidad": 1}, a.ByEntity)
	require.Equal(t, 12, a.ByCategory["tributario"])
	require.Equal(t, 1, a.ByDifficulty["hard"])

	require.Len(t, a.Costliest, TopCostliest)
	require.Equal(t, "p05", a.Costliest[0].Name)
	require.Equal(t, "p11", a.Costliest[1].Name)
	for i := 1; i < len(a.Costliest); i++ {
		require.GreaterOrEqual(t, a.Costliest[i-1].Cost, a.Costliest[i].Cost)
		require.Positive(t, a.Costliest[i].Cost)
	}

	empty := Summarize(nil)
	require.Zero(t, empty.Total)
	require.Empty(t, empty.Costliest)
}
