package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"Concierge/backend/go/internal/database/milvus"
	"Concierge/backend/go/pkg/logger"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const fieldID = "id"

var outputFields = []string{
	fieldID, FieldContent, FieldRole, FieldSessionID, FieldType, FieldProfileKey,
	FieldProfileValue, FieldSource, FieldHasPortfolio, FieldHasProcess, FieldHasPricing,
	FieldHasServices, FieldTimestamp,
}

// MilvusStore persists records in a single Milvus collection using COSINE similarity.
type MilvusStore struct {
	client      client.Client
	collection  string
	vectorField string
	searchParam entity.SearchParam
	dim         int
	log         *logger.Logger
}

// NewMilvusStore builds a store on top of an initialized client. EnsureCollection
// must have been called for the same dimension.
func NewMilvusStore(mc *milvus.MilvusClient, dim int, log *logger.Logger) (*MilvusStore, error) {
	if mc == nil || mc.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	sp, err := mc.SearchParam()
	if err != nil {
		return nil, fmt.Errorf("building search param: %w", err)
	}
	return &MilvusStore{
		client:      mc.Client,
		collection:  mc.Config.Schema.CollectionName,
		vectorField: mc.Config.Schema.VectorField,
		searchParam: sp,
		dim:         dim,
		log:         log,
	}, nil
}

func (s *MilvusStore) Dimension() int { return s.dim }

// Upsert writes records with Milvus upsert semantics so an existing id is replaced.
func (s *MilvusStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if err := CheckDimension(r.Vector, s.dim); err != nil {
			return err
		}
	}
	if _, err := s.client.Upsert(ctx, s.collection, "", recordColumns(records, s.vectorField, s.dim)...); err != nil {
		return fmt.Errorf("failed to upsert %d records into Milvus: %w", len(records), err)
	}
	s.log.Debug(fmt.Sprintf("upserted %d records into %s", len(records), s.collection))
	return nil
}

// Query runs a filtered COSINE search.
func (s *MilvusStore) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if err := CheckDimension(vector, s.dim); err != nil {
		return nil, err
	}
	expr := BuildFilterExpression(filter)
	results, err := s.client.Search(
		ctx, s.collection, []string{}, expr, outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		s.vectorField, entity.COSINE, topK, s.searchParam,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var matches []Match
	for _, res := range results {
		cols := columnIndex(res.Fields)
		for i := 0; i < res.ResultCount; i++ {
			rec, err := readRecord(cols, i)
			if err != nil {
				s.log.Warn(fmt.Sprintf("skipping malformed search hit: %v", err))
				continue
			}
			matches = append(matches, Match{Record: rec, Score: res.Scores[i]})
		}
	}
	return matches, nil
}

// Filter runs a scalar query without vector ranking. Milvus query results are
// unordered, so every match is read and the newest limit are kept.
func (s *MilvusStore) Filter(ctx context.Context, filter Filter, limit int) ([]Record, error) {
	expr := BuildFilterExpression(filter)
	if expr == "" {
		expr = fieldID + ` != ""`
	}
	rs, err := s.client.Query(ctx, s.collection, []string{}, expr, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to query Milvus: %w", err)
	}
	cols := columnIndex(rs)
	idCol := cols[fieldID]
	if idCol == nil {
		return nil, nil
	}
	out := make([]Record, 0, idCol.Len())
	for i := 0; i < idCol.Len(); i++ {
		rec, err := readRecord(cols, i)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return NewestFirst(out, limit), nil
}

// BuildFilterExpression renders an exact-match filter as a Milvus boolean expression.
// Keys are sorted so the expression is stable.
func BuildFilterExpression(filter Filter) string {
	if len(filter) == 0 {
		return ""
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := filter[k].(type) {
		case string:
			conditions = append(conditions, fmt.Sprintf(`%s == "%s"`, k, escape(v)))
		case fmt.Stringer:
			conditions = append(conditions, fmt.Sprintf(`%s == "%s"`, k, escape(v.String())))
		case bool:
			conditions = append(conditions, fmt.Sprintf(`%s == %t`, k, v))
		case int, int64:
			conditions = append(conditions, fmt.Sprintf(`%s == %d`, k, v))
		default:
			conditions = append(conditions, fmt.Sprintf(`%s == "%v"`, k, v))
		}
	}
	return strings.Join(conditions, " and ")
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func recordColumns(records []Record, vectorField string, dim int) []entity.Column {
	n := len(records)
	ids := make([]string, n)
	vectors := make([][]float32, n)
	str := map[string][]string{}
	for _, f := range []string{FieldContent, FieldRole, FieldSessionID, FieldType, FieldProfileKey, FieldProfileValue, FieldSource} {
		str[f] = make([]string, n)
	}
	flags := map[string][]bool{}
	for _, f := range []string{FieldHasPortfolio, FieldHasProcess, FieldHasPricing, FieldHasServices} {
		flags[f] = make([]bool, n)
	}
	timestamps := make([]int64, n)

	for i, r := range records {
		m := r.Metadata
		ids[i] = r.ID
		vectors[i] = r.Vector
		str[FieldContent][i] = m.Content
		str[FieldRole][i] = m.Role
		str[FieldSessionID][i] = m.SessionID
		str[FieldType][i] = m.Type
		str[FieldProfileKey][i] = m.ProfileKey
		str[FieldProfileValue][i] = m.ProfileValue
		str[FieldSource][i] = m.Source
		flags[FieldHasPortfolio][i] = m.HasPortfolio
		flags[FieldHasProcess][i] = m.HasProcess
		flags[FieldHasPricing][i] = m.HasPricing
		flags[FieldHasServices][i] = m.HasServices
		timestamps[i] = m.Timestamp
	}

	cols := []entity.Column{
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnFloatVector(vectorField, dim, vectors),
	}
	for _, f := range []string{FieldContent, FieldRole, FieldSessionID, FieldType, FieldProfileKey, FieldProfileValue, FieldSource} {
		cols = append(cols, entity.NewColumnVarChar(f, str[f]))
	}
	for _, f := range []string{FieldHasPortfolio, FieldHasProcess, FieldHasPricing, FieldHasServices} {
		cols = append(cols, entity.NewColumnBool(f, flags[f]))
	}
	return append(cols, entity.NewColumnInt64(FieldTimestamp, timestamps))
}

func columnIndex(cols []entity.Column) map[string]entity.Column {
	idx := make(map[string]entity.Column, len(cols))
	for _, c := range cols {
		idx[c.Name()] = c
	}
	return idx
}

func readRecord(cols map[string]entity.Column, i int) (Record, error) {
	getString := func(name string) string {
		if c, ok := cols[name]; ok {
			v, _ := c.GetAsString(i)
			return v
		}
		return ""
	}
	getBool := func(name string) bool {
		if c, ok := cols[name]; ok {
			v, _ := c.GetAsBool(i)
			return v
		}
		return false
	}

	idCol, ok := cols[fieldID]
	if !ok {
		return Record{}, fmt.Errorf("result is missing the %q column", fieldID)
	}
	id, err := idCol.GetAsString(i)
	if err != nil {
		return Record{}, fmt.Errorf("reading id at %d: %w", i, err)
	}
	var ts int64
	if c, ok := cols[FieldTimestamp]; ok {
		ts, _ = c.GetAsInt64(i)
	}
	return Record{
		ID: id,
		Metadata: Metadata{
			Content:      getString(FieldContent),
			Role:         getString(FieldRole),
			SessionID:    getString(FieldSessionID),
			Type:         getString(FieldType),
			ProfileKey:   getString(FieldProfileKey),
			ProfileValue: getString(FieldProfileValue),
			Source:       getString(FieldSource),
			HasPortfolio: getBool(FieldHasPortfolio),
			HasProcess:   getBool(FieldHasProcess),
			HasPricing:   getBool(FieldHasPricing),
			HasServices:  getBool(FieldHasServices),
			Timestamp:    ts,
		},
	}, nil
}
