package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// memRepo is an in-memory domain.CatalogRepository used to exercise the
// service against the reference matching semantics (domain.Filter.Match).
type memRepo struct {
	schema domain.Schema
	items  []*domain.Item
	err    error // when set, every method fails with it
}

func newMemRepo(schema domain.Schema, items []*domain.Item) *memRepo {
	return &memRepo{schema: schema, items: items}
}

func (m *memRepo) matching(f domain.Filter) []*domain.Item {
	out := []*domain.Item{}
	for _, it := range m.items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

func sortItems(items []*domain.Item, spec string) {
	keys := strings.Split(spec, ",")
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		for _, key := range keys {
			key = strings.TrimSpace(key)
			desc := strings.HasPrefix(key, "-")
			field := strings.TrimPrefix(key, "-")
			cmp := compareField(a, b, field)
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return a.ID < b.ID
	})
}

func compareField(a, b *domain.Item, field string) int {
	switch field {
	case domain.FieldName:
		return strings.Compare(a.Name, b.Name)
	case domain.FieldCreatedAt:
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	}
	av, bv := numericField(a, field), numericField(b, field)
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}

func numericField(it *domain.Item, field string) float64 {
	switch field {
	case domain.FieldSold:
		return float64(it.Sold)
	case domain.FieldPrice:
		return it.Price
	case domain.FieldRating:
		return it.Rating
	case domain.FieldRevenue:
		return it.Revenue
	case domain.FieldYear:
		return float64(it.Year)
	}
	return 0
}

func (m *memRepo) Create(_ context.Context, item *domain.Item) error {
	if m.err != nil {
		return m.err
	}
	if item.ID == "" {
		item.ID = "mem-" + strconv.Itoa(len(m.items)+1)
	}
	m.items = append(m.items, item)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, it := range m.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, id string, fields map[string]any) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, it := range m.items {
		if it.ID != id {
			continue
		}
		if v, ok := fields[domain.FieldPrice].(float64); ok {
			it.Price = v
		}
		if v, ok := fields[domain.FieldSold].(int64); ok {
			it.Sold = v
		}
		if v, ok := fields[domain.FieldRating].(float64); ok {
			it.Rating = v
		}
		return it, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memRepo) List(_ context.Context, f domain.Filter, spec string, limit, offset int) ([]*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	matched := m.matching(f)
	sortItems(matched, spec)
	if offset >= len(matched) {
		return []*domain.Item{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (m *memRepo) Count(_ context.Context, f domain.Filter) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.matching(f))), nil
}

func (m *memRepo) Summary(_ context.Context, f domain.Filter) (*domain.Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	matched := m.matching(f)
	s := &domain.Summary{Total: int64(len(matched))}
	for _, it := range matched {
		s.AvgRating += it.Rating
		s.TotalRevenue += it.Revenue
		s.TotalSold += it.Sold
	}
	if len(matched) > 0 {
		s.AvgRating /= float64(len(matched))
	}
	return s, nil
}

func (m *memRepo) FacetGroups(_ context.Context, f domain.Filter, facet domain.FacetDef, limit int) ([]domain.FacetGroup, error) {
	if m.err != nil {
		return nil, m.err
	}
	byValue := map[string]*domain.FacetGroup{}
	for _, it := range m.matching(f) {
		for _, v := range it.FacetValues(facet.Field) {
			g, ok := byValue[v]
			if !ok {
				g = &domain.FacetGroup{Value: v}
				byValue[v] = g
			}
			g.Count++
			g.Revenue += it.Revenue
			g.Sold += it.Sold
		}
	}

	groups := make([]domain.FacetGroup, 0, len(byValue))
	for _, g := range byValue {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if m.schema.Commerce {
			if groups[i].Revenue != groups[j].Revenue {
				return groups[i].Revenue > groups[j].Revenue
			}
		} else if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Value < groups[j].Value
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}

func (m *memRepo) Histogram(_ context.Context, f domain.Filter, field string, boundaries []float64) ([]domain.HistogramBucket, error) {
	if m.err != nil {
		return nil, m.err
	}
	byLabel := map[string]*domain.HistogramBucket{}
	for _, it := range m.matching(f) {
		label := domain.BucketLabel(boundaries, numericField(it, field))
		b, ok := byLabel[label]
		if !ok {
			b = &domain.HistogramBucket{Bucket: label}
			byLabel[label] = b
		}
		b.Count++
		b.Revenue += it.Revenue
	}

	buckets := []domain.HistogramBucket{}
	for _, bound := range boundaries[:len(boundaries)-1] {
		if b, ok := byLabel[domain.FormatBound(bound)]; ok {
			buckets = append(buckets, *b)
		}
	}
	if b, ok := byLabel[domain.BucketOther]; ok {
		buckets = append(buckets, *b)
	}
	return buckets, nil
}

func (m *memRepo) TopItems(_ context.Context, f domain.Filter, spec string, limit int) ([]*domain.Item, error) {
	return m.List(context.Background(), f, spec, limit, 0)
}

func (m *memRepo) MonthlyTrend(_ context.Context, f domain.Filter) ([]domain.TrendPoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	type ym struct{ y, mo int }
	byMonth := map[ym]*domain.TrendPoint{}
	for _, it := range m.matching(f) {
		k := ym{it.CreatedAt.Year(), int(it.CreatedAt.Month())}
		p, ok := byMonth[k]
		if !ok {
			p = &domain.TrendPoint{Year: k.y, Month: k.mo}
			byMonth[k] = p
		}
		p.Revenue += it.Revenue
		p.Sold += it.Sold
	}
	points := []domain.TrendPoint{}
	for _, p := range byMonth {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points, nil
}

func (m *memRepo) CountsByYear(_ context.Context, f domain.Filter) ([]domain.YearCount, error) {
	if m.err != nil {
		return nil, m.err
	}
	byYear := map[int]int64{}
	for _, it := range m.matching(f) {
		byYear[it.Year]++
	}
	counts := []domain.YearCount{}
	for y, n := range byYear {
		counts = append(counts, domain.YearCount{Year: y, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Year < counts[j].Year })
	return counts, nil
}

func (m *memRepo) Distinct(_ context.Context, field string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := map[string]bool{}
	for _, it := range m.items {
		for _, v := range it.FacetValues(field) {
			if v != "" {
				seen[v] = true
			}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

func (m *memRepo) DistinctYears(_ context.Context) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := map[int]bool{}
	for _, it := range m.items {
		if it.Year != 0 {
			seen[it.Year] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

func (m *memRepo) RecomputeRevenue(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	for _, it := range m.items {
		if it.ID == id {
			it.Revenue = it.Price * float64(it.Sold)
			return nil
		}
	}
	return domain.ErrNotFound
}
