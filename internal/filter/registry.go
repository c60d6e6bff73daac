/*-------------------------------------------------------------------------
 *
 * registry.go
 *    Type and category registry for filter compilation
 *
 * Static tables mapping filterable datatypes to operator categories and
 * symbol names to their owning entity and storage columns. The tables are
 * process-wide constants initialized once; nothing mutates them at runtime.
 *
 * Copyright (c) 2024-2026, verdictml, Inc. <admin@verdictml.dev>
 *
 * IDENTIFICATION
 *    verdict/internal/filter/registry.go
 *
 *-------------------------------------------------------------------------
 */

package filter

/* Operator is a filter expression operator */
type Operator string

const (
	OpNot       Operator = "not"
	OpIsNull    Operator = "isnull"
	OpIsNotNull Operator = "isnotnull"

	OpEq         Operator = "eq"
	OpNe         Operator = "ne"
	OpGt         Operator = "gt"
	OpGe         Operator = "ge"
	OpLt         Operator = "lt"
	OpLe         Operator = "le"
	OpIntersects Operator = "intersects"
	OpInside     Operator = "inside"
	OpOutside    Operator = "outside"
	OpContains   Operator = "contains"

	OpAnd Operator = "and"
	OpOr  Operator = "or"
	OpXor Operator = "xor"
)

/* Dtype is a filterable datatype */
type Dtype string

const (
	DtypeBool            Dtype = "bool"
	DtypeString          Dtype = "string"
	DtypeInteger         Dtype = "integer"
	DtypeFloat           Dtype = "float"
	DtypeDatetime        Dtype = "datetime"
	DtypeDate            Dtype = "date"
	DtypeTime            Dtype = "time"
	DtypeDuration        Dtype = "duration"
	DtypePoint           Dtype = "point"
	DtypeMultiPoint      Dtype = "multipoint"
	DtypeLineString      Dtype = "linestring"
	DtypeMultiLineString Dtype = "multilinestring"
	DtypePolygon         Dtype = "polygon"
	DtypeBox             Dtype = "box"
	DtypeMultiPolygon    Dtype = "multipolygon"
	DtypeRaster          Dtype = "raster"
	DtypeTaskType        Dtype = "tasktype"
	DtypeLabel           Dtype = "label"
	DtypeEmbedding       Dtype = "embedding"
)

/* Category is an operator capability class */
type Category string

const (
	CategoryNullable     Category = "nullable"
	CategoryEquatable    Category = "equatable"
	CategoryQuantifiable Category = "quantifiable"
	CategorySpatial      Category = "spatial"
)

type categorySet map[Category]bool

/* Entity is the owner of a filterable attribute */
type Entity string

const (
	EntityDataset    Entity = "dataset"
	EntityModel      Entity = "model"
	EntityDatum      Entity = "datum"
	EntityAnnotation Entity = "annotation"
	EntityLabel      Entity = "label"
	EntityEmbedding  Entity = "embedding"
)

/* owner binds a symbol name to its row identifier and value columns */
type owner struct {
	Entity      Entity
	Table       string
	IDColumn    string
	ValueColumn string /* empty for composite symbols like annotation.labels */
}

/* operatorCategory maps each comparison operator to the category that
 * grants it. "contains" is deliberately absent: it parses but no category
 * grants it, so it always fails compilation as unsupported. */
var operatorCategory = map[Operator]Category{
	OpIsNull:     CategoryNullable,
	OpIsNotNull:  CategoryNullable,
	OpEq:         CategoryEquatable,
	OpNe:         CategoryEquatable,
	OpGt:         CategoryQuantifiable,
	OpGe:         CategoryQuantifiable,
	OpLt:         CategoryQuantifiable,
	OpLe:         CategoryQuantifiable,
	OpIntersects: CategorySpatial,
	OpInside:     CategorySpatial,
	OpOutside:    CategorySpatial,
}

/* dtypeCategories maps each filterable dtype to its operator categories */
var dtypeCategories = map[Dtype]categorySet{
	DtypeBool:            {CategoryEquatable: true},
	DtypeString:          {CategoryEquatable: true},
	DtypeInteger:         {CategoryEquatable: true, CategoryQuantifiable: true},
	DtypeFloat:           {CategoryEquatable: true, CategoryQuantifiable: true},
	DtypeDatetime:        {CategoryEquatable: true, CategoryQuantifiable: true},
	DtypeDate:            {CategoryEquatable: true, CategoryQuantifiable: true},
	DtypeTime:            {CategoryEquatable: true, CategoryQuantifiable: true},
	DtypeDuration:        {CategoryEquatable: true, CategoryQuantifiable: true},
	DtypePoint:           {CategoryEquatable: true, CategorySpatial: true},
	DtypeMultiPoint:      {CategorySpatial: true},
	DtypeLineString:      {CategorySpatial: true},
	DtypeMultiLineString: {CategorySpatial: true},
	DtypePolygon:         {CategorySpatial: true},
	DtypeBox:             {CategorySpatial: true},
	DtypeMultiPolygon:    {CategorySpatial: true},
	DtypeRaster:          {CategorySpatial: true},
	DtypeTaskType:        {CategoryEquatable: true},
	DtypeLabel:           {CategoryEquatable: true},
	DtypeEmbedding:       {},
}

/* symbolCategories maps symbol names to categories granted by the storage
 * column itself, regardless of dtype. Geometry and raster columns are
 * nullable; everything else is not. */
var symbolCategories = map[string]categorySet{
	"dataset.name":         {CategoryEquatable: true},
	"dataset.metadata":     {},
	"model.name":           {CategoryEquatable: true},
	"model.metadata":       {},
	"datum.uid":            {CategoryEquatable: true},
	"datum.metadata":       {},
	"annotation.box":       {CategorySpatial: true, CategoryNullable: true},
	"annotation.polygon":   {CategorySpatial: true, CategoryNullable: true},
	"annotation.raster":    {CategorySpatial: true, CategoryNullable: true},
	"annotation.embedding": {},
	"annotation.metadata":  {},
	"annotation.labels":    {CategoryEquatable: true},
	"label.key":            {CategoryEquatable: true},
	"label.value":          {CategoryEquatable: true},
}

/* attributeCategories maps attribute modifiers to the categories of their
 * output. An "area" comparison is numeric no matter what it is taken of. */
var attributeCategories = map[string]categorySet{
	"area": {CategoryEquatable: true, CategoryQuantifiable: true},
}

/* symbolOwners maps symbol names to owning entity and storage columns */
var symbolOwners = map[string]owner{
	"dataset.name":         {EntityDataset, "verdict.datasets", "datasets.id", "datasets.name"},
	"dataset.metadata":     {EntityDataset, "verdict.datasets", "datasets.id", "datasets.metadata"},
	"model.name":           {EntityModel, "verdict.models", "models.id", "models.name"},
	"model.metadata":       {EntityModel, "verdict.models", "models.id", "models.metadata"},
	"datum.uid":            {EntityDatum, "verdict.datums", "datums.id", "datums.uid"},
	"datum.metadata":       {EntityDatum, "verdict.datums", "datums.id", "datums.metadata"},
	"annotation.box":       {EntityAnnotation, "verdict.annotations", "annotations.id", "annotations.box"},
	"annotation.polygon":   {EntityAnnotation, "verdict.annotations", "annotations.id", "annotations.polygon"},
	"annotation.raster":    {EntityAnnotation, "verdict.annotations", "annotations.id", "annotations.raster"},
	"annotation.embedding": {EntityEmbedding, "verdict.embeddings", "embeddings.id", "embeddings.value"},
	"annotation.metadata":  {EntityAnnotation, "verdict.annotations", "annotations.id", "annotations.metadata"},
	"annotation.labels":    {EntityLabel, "verdict.labels", "labels.id", ""},
	"label.key":            {EntityLabel, "verdict.labels", "labels.id", "labels.key"},
	"label.value":          {EntityLabel, "verdict.labels", "labels.id", "labels.value"},
}

/* symbolDtypes pins the declared dtype of each fixed-type symbol. The
 * metadata symbols are absent: their dtype describes the keyed value, not
 * the column. A declaration disagreeing with the column is rejected at
 * compile time rather than surfacing as a SQL type error. */
var symbolDtypes = map[string]Dtype{
	"dataset.name":         DtypeString,
	"model.name":           DtypeString,
	"datum.uid":            DtypeString,
	"annotation.box":       DtypeBox,
	"annotation.polygon":   DtypePolygon,
	"annotation.raster":    DtypeRaster,
	"annotation.embedding": DtypeEmbedding,
	"annotation.labels":    DtypeLabel,
	"label.key":            DtypeString,
	"label.value":          DtypeString,
}

/* symbolSupportsKey lists the dictionary-valued symbols that accept a key */
var symbolSupportsKey = map[string]bool{
	"dataset.metadata":    true,
	"model.metadata":      true,
	"datum.metadata":      true,
	"annotation.metadata": true,
}

/* attributeTransforms maps (modifier, symbol name) to a SQL transform. The
 * area of a geometry is ST_Area; the area of a raster is its pixel count. */
var attributeTransforms = map[string]map[string]string{
	"area": {
		"annotation.box":      "ST_Area(%s)",
		"annotation.polygon":  "ST_Area(%s)",
		"annotation.raster":   "ST_Count(%s)",
		"dataset.metadata":    "ST_Area(%s)",
		"model.metadata":      "ST_Area(%s)",
		"datum.metadata":      "ST_Area(%s)",
		"annotation.metadata": "ST_Area(%s)",
	},
}

/* spatialDtypes lists dtypes whose literal values are geometry */
var spatialDtypes = map[Dtype]bool{
	DtypePoint:           true,
	DtypeMultiPoint:      true,
	DtypeLineString:      true,
	DtypeMultiLineString: true,
	DtypePolygon:         true,
	DtypeBox:             true,
	DtypeMultiPolygon:    true,
}

/* effectiveCategories resolves the category set governing a symbol. An
 * attribute modifier replaces the dtype/name categories with its own output
 * categories; nullability of the underlying column is preserved. */
func effectiveCategories(sym *Symbol) (categorySet, error) {
	dtypeCats, ok := dtypeCategories[sym.Dtype]
	if !ok {
		return nil, &StructuralError{Reason: "unrecognized dtype '" + string(sym.Dtype) + "'"}
	}
	nameCats, ok := symbolCategories[sym.Name]
	if !ok {
		return nil, &SymbolError{Name: sym.Name}
	}

	cats := categorySet{}
	if sym.Attribute != "" {
		attrCats, ok := attributeCategories[sym.Attribute]
		if !ok {
			return nil, &SymbolError{Name: sym.Name, Attribute: sym.Attribute}
		}
		if _, ok := attributeTransforms[sym.Attribute][sym.Name]; !ok {
			return nil, &SymbolError{Name: sym.Name, Attribute: sym.Attribute}
		}
		for c := range attrCats {
			cats[c] = true
		}
	} else {
		for c := range dtypeCats {
			cats[c] = true
		}
		for c := range nameCats {
			cats[c] = true
		}
	}
	if nameCats[CategoryNullable] {
		cats[CategoryNullable] = true
	}
	return cats, nil
}
