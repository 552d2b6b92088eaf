package registration

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local experiments.
// It mirrors the SQLite store's semantics, including the duplicate errors
// and the read-path password exclusion.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Insert(_ context.Context, rec *Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.records {
		if existing.Email == rec.Email {
			return 0, ErrDuplicateEmail
		}
		if rec.CPF != "" && existing.CPF == rec.CPF {
			return 0, ErrDuplicateCPF
		}
	}

	stored := *rec
	stored.ID = s.nextID
	s.nextID++
	s.records = append(s.records, &stored)
	return stored.ID, nil
}

func (s *MemoryStore) ExistsByEmail(_ context.Context, email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ExistsByCPF(_ context.Context, cpf string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if cpf != "" && rec.CPF == cpf {
			return true
		}
	}
	return false
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) *Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Email == email {
			return readModel(rec)
		}
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, page, pageSize int, search string) *ListResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*Record{}
	for _, rec := range s.records {
		if search == "" || matchesSearch(rec, search) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CriadoEm > matched[j].CriadoEm
	})

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}

	items := []*Registration{}
	for _, rec := range matched[start:end] {
		items = append(items, readModel(rec))
	}
	return &ListResult{Items: items, Pagination: buildPagination(page, pageSize, total)}
}

func (s *MemoryStore) ListAll(_ context.Context) []*Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Record, len(s.records))
	copy(all, s.records)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CriadoEm > all[j].CriadoEm
	})

	items := []*Registration{}
	for _, rec := range all {
		items = append(items, readModel(rec))
	}
	return items
}

func (s *MemoryStore) Count(_ context.Context) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records))
}

func (s *MemoryStore) CountByField(_ context.Context, field string, limit int) []FieldCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := map[string]int64{}
	order := []string{}
	for _, rec := range s.records {
		value := fieldValue(rec, field)
		if value == "" {
			continue
		}
		if _, seen := buckets[value]; !seen {
			order = append(order, value)
		}
		buckets[value]++
	}

	counts := []FieldCount{}
	for _, value := range order {
		counts = append(counts, FieldCount{Value: value, Count: buckets[value]})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

func (s *MemoryStore) DeleteByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Healthy(context.Context) bool {
	return true
}

func (s *MemoryStore) Close() error {
	return nil
}

func matchesSearch(rec *Record, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(rec.NomeCompleto), needle) ||
		strings.Contains(strings.ToLower(rec.Email), needle) ||
		strings.Contains(strings.ToLower(rec.Empresa), needle)
}

func fieldValue(rec *Record, field string) string {
	switch field {
	case "tipo_participacao":
		return rec.TipoParticipacao
	case "servidor_publico":
		return rec.ServidorPublico
	case "estado":
		return rec.Estado
	case "pais":
		return rec.Pais
	case "deficiencia":
		return rec.Deficiencia
	case "raca":
		return rec.Raca
	case "genero":
		return rec.Genero
	default:
		return ""
	}
}

// readModel copies the record's read fields, normalizing nil slices so the
// JSON output always carries arrays.
func readModel(rec *Record) *Registration {
	reg := rec.Registration
	if reg.AreasInteresse == nil {
		reg.AreasInteresse = []string{}
	}
	if reg.TiposDeficiencia == nil {
		reg.TiposDeficiencia = []string{}
	}
	return &reg
}
