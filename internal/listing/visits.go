package listing

import (
	"slices"
	"strings"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
)

const NoNeighborhood = "Sem bairro definido"

type VisitGroup struct {
	Bairro string             `json:"bairro"`
	Visits []domain.VisitItem `json:"visits"`
}

// GroupVisits groups by neighborhood. Groups are sorted by name; inside a
// group the backend order is kept.
func GroupVisits(items []domain.VisitItem) []VisitGroup {
	byBairro := map[string][]domain.VisitItem{}
	for _, v := range items {
		bairro := strings.TrimSpace(v.Bairro.String())
		if bairro == "" {
			bairro = NoNeighborhood
		}
		byBairro[bairro] = append(byBairro[bairro], v)
	}

	keys := make([]string, 0, len(byBairro))
	for k := range byBairro {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	groups := make([]VisitGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, VisitGroup{Bairro: k, Visits: byBairro[k]})
	}
	return groups
}

type VisitStats struct {
	Scheduled    int `json:"agendadas"`
	Completed    int `json:"concluidas"`
	NotCompleted int `json:"naoConcluidas"`
	Bairros      int `json:"bairros"`
}

func Stats(items []domain.VisitItem) VisitStats {
	var stats VisitStats
	for _, v := range items {
		switch v.Status {
		case domain.VisitScheduled:
			stats.Scheduled++
		case domain.VisitCompleted:
			stats.Completed++
		case domain.VisitNotCompleted:
			stats.NotCompleted++
		}
	}
	stats.Bairros = len(GroupVisits(items))
	return stats
}

// FormatDate renders a sheet date as dd/mm/aaaa, or returns it unchanged when
// it cannot be read.
func FormatDate(value string) string {
	t, ok := ParseDate(value)
	if !ok {
		return value
	}
	return t.UTC().Format("02/01/2006")
}
