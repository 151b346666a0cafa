package jsonpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/formjson-mcp/pkg/jsonvalue"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	engine, err := NewEngine(16)
	require.NoError(t, err)
	return NewExtractor(engine)
}

func mustParse(t *testing.T, doc string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.Parse([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestExtract_NoTrailingDotKeepsSequence(t *testing.T) {
	x := newTestExtractor(t)

	got, err := x.Extract(mustParse(t, `{"a":{"b":"X"}}`), "$.a.b")
	require.NoError(t, err)
	assert.False(t, got.Collapsed)
	assert.Equal(t, jsonvalue.Array{jsonvalue.String("X")}, got.Value())
}

func TestExtract_TrailingDotCollapsesSingleMatch(t *testing.T) {
	x := newTestExtractor(t)

	got, err := x.Extract(mustParse(t, `{"a":{"b":"X"}}`), "$.a.b.")
	require.NoError(t, err)
	assert.True(t, got.Collapsed)
	assert.Equal(t, jsonvalue.String("X"), got.Value())
}

func TestExtract_SurroundingSpaceIgnored(t *testing.T) {
	x := newTestExtractor(t)

	got, err := x.Extract(mustParse(t, `{"a":{"b":"X"}}`), "  $.a.b. \t")
	require.NoError(t, err)
	assert.Equal(t, "$.a.b.", got.Path)
	assert.True(t, got.Collapsed)
	assert.Equal(t, jsonvalue.String("X"), got.Value())
}

func TestExtract_TrailingDotWithManyOrNoMatches(t *testing.T) {
	x := newTestExtractor(t)
	doc := mustParse(t, `{"items":[{"name":"a"},{"name":"b"}]}`)

	got, err := x.Extract(doc, "$.items[*].name.")
	require.NoError(t, err)
	assert.False(t, got.Collapsed)
	assert.Equal(t, jsonvalue.Array{jsonvalue.String("a"), jsonvalue.String("b")}, got.Value())

	got, err = x.Extract(doc, "$.missing.")
	require.NoError(t, err)
	assert.False(t, got.Collapsed)
	assert.Equal(t, jsonvalue.Array{}, got.Value())
}

func TestExtract_DefaultPathReturnsDocument(t *testing.T) {
	x := newTestExtractor(t)
	doc := mustParse(t, `{"a":1}`)

	got, err := x.Extract(doc, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, got.Path)
	assert.True(t, got.Collapsed)
	assert.Equal(t, doc, got.Value())
}

func TestExtract_FalsyDocumentShortCircuits(t *testing.T) {
	x := newTestExtractor(t)

	for _, doc := range []jsonvalue.Value{jsonvalue.Null{}, jsonvalue.Bool(false), jsonvalue.Number(0), jsonvalue.String("")} {
		got, err := x.Extract(doc, "$.a")
		require.NoError(t, err)
		assert.False(t, got.Defined)
		assert.Empty(t, got.Values)
		assert.Equal(t, jsonvalue.Null{}, got.Value())
	}
}

func TestExtract_InvalidPath(t *testing.T) {
	x := newTestExtractor(t)

	_, err := x.Extract(mustParse(t, `{"a":1}`), "$.a[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid path expression")
}

func TestEngine_Query(t *testing.T) {
	engine, err := NewEngine(16)
	require.NoError(t, err)

	doc := mustParse(t, `{
		"limit": 5,
		"store": {
			"items": [
				{"name": "Apple", "price": 3, "tags": ["fruit"]},
				{"name": "bread", "price": 7},
				{"name": "Avocado", "price": 12, "tags": []},
				{"name": "milk", "price": null}
			],
			"owner": {"name": "Ada"}
		}
	}`)

	tests := []struct {
		name string
		path string
		want []jsonvalue.Value
	}{
		{"dot members", "$.store.owner.name", []jsonvalue.Value{jsonvalue.String("Ada")}},
		{"bracket members", "$['store'][\"owner\"]['name']", []jsonvalue.Value{jsonvalue.String("Ada")}},
		{"relative path", "store.owner.name", []jsonvalue.Value{jsonvalue.String("Ada")}},
		{"index", "$.store.items[1].name", []jsonvalue.Value{jsonvalue.String("bread")}},
		{"negative index", "$.store.items[-1].name", []jsonvalue.Value{jsonvalue.String("milk")}},
		{"out of range index", "$.store.items[10]", []jsonvalue.Value{}},
		{"numeric member", "$.store.items.0.name", []jsonvalue.Value{jsonvalue.String("Apple")}},
		{"array length", "$.store.items.length", []jsonvalue.Value{jsonvalue.Number(4)}},
		{"wildcard", "$.store.items[*].price", []jsonvalue.Value{jsonvalue.Number(3), jsonvalue.Number(7), jsonvalue.Number(12), jsonvalue.Null{}}},
		{"dot wildcard", "$.store.owner.*", []jsonvalue.Value{jsonvalue.String("Ada")}},
		{"slice", "$.store.items[1:3].name", []jsonvalue.Value{jsonvalue.String("bread"), jsonvalue.String("Avocado")}},
		{"open slice", "$.store.items[:1].name", []jsonvalue.Value{jsonvalue.String("Apple")}},
		{"index union", "$.store.items[0,2].name", []jsonvalue.Value{jsonvalue.String("Apple"), jsonvalue.String("Avocado")}},
		{"name union", "$.store.owner['name','missing']", []jsonvalue.Value{jsonvalue.String("Ada")}},
		{"missing member", "$.store.nothing.here", []jsonvalue.Value{}},
		{"filter comparison", "$.store.items[?(@.price < 10)].name", []jsonvalue.Value{jsonvalue.String("Apple"), jsonvalue.String("bread")}},
		{"filter equality", "$.store.items[?(@.name == 'milk')].price", []jsonvalue.Value{jsonvalue.Null{}}},
		{"filter existence", "$.store.items[?(@.tags)].name", []jsonvalue.Value{jsonvalue.String("Apple"), jsonvalue.String("Avocado")}},
		{"filter negation", "$.store.items[?(!@.tags)].name", []jsonvalue.Value{jsonvalue.String("bread"), jsonvalue.String("milk")}},
		{"filter and/or", "$.store.items[?(@.price > 5 && @.price < 10 || @.name === 'Apple')].name", []jsonvalue.Value{jsonvalue.String("Apple"), jsonvalue.String("bread")}},
		{"filter root reference", "$.store.items[?(@.price > $.limit)].name", []jsonvalue.Value{jsonvalue.String("bread"), jsonvalue.String("Avocado")}},
		{"filter regex", "$.store.items[?(@.name =~ /^a/i)].name", []jsonvalue.Value{jsonvalue.String("Apple"), jsonvalue.String("Avocado")}},
		{"filter nested length", "$.store.items[?(@.tags.length == 1)].name", []jsonvalue.Value{jsonvalue.String("Apple")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Query(doc, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Values)
		})
	}
}

func TestEngine_RecursiveDescent(t *testing.T) {
	engine, err := NewEngine(16)
	require.NoError(t, err)

	doc := mustParse(t, `{"name":"root","children":[{"name":"a"},{"child":{"name":"b"}}]}`)

	result, err := engine.Query(doc, "$..name")
	require.NoError(t, err)
	assert.ElementsMatch(t, []jsonvalue.Value{jsonvalue.String("root"), jsonvalue.String("a"), jsonvalue.String("b")}, result.Values)

	result, err = engine.Query(doc, "$..[0].name")
	require.NoError(t, err)
	assert.Equal(t, []jsonvalue.Value{jsonvalue.String("a")}, result.Values)
}

func TestEngine_Validate(t *testing.T) {
	engine, err := NewEngine(16)
	require.NoError(t, err)

	assert.NoError(t, engine.Validate("$."))
	assert.NoError(t, engine.Validate("$.a[?(@.b != null)]"))

	assert.Error(t, engine.Validate("$.a["))
	assert.Error(t, engine.Validate("$[(@.length-1)]"))
	assert.Error(t, engine.Validate("$.a[?(@.b ==)]"))
	assert.Error(t, engine.Validate("$.a[::2]"))
	assert.Error(t, engine.Validate("$.a[?(@.b =~ /x)]"))
}

func TestEngine_CachesPrograms(t *testing.T) {
	engine, err := NewEngine(16)
	require.NoError(t, err)

	_, err = engine.Query(jsonvalue.Object{}, "$.a")
	require.NoError(t, err)
	_, err = engine.Query(jsonvalue.Object{}, "$.a")
	require.NoError(t, err)
	assert.Equal(t, 1, engine.programs.Len())
}

func TestTranslate(t *testing.T) {
	program, err := Translate("$.a[0]")
	require.NoError(t, err)
	assert.Contains(t, program, `. as $root | jp_key("a") | jp_idx(0)`)

	program, err = Translate("$")
	require.NoError(t, err)
	assert.Contains(t, program, ". as $root | .")

	_, err = Translate("   ")
	require.Error(t, err)
}
