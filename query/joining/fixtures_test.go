package joining_test

import (
	"github.com/satishbabariya/joinsql/mapping"
	"github.com/satishbabariya/joinsql/query/filter"
	"github.com/satishbabariya/joinsql/schema"
)

func table(name string, pk []string, columns ...string) *schema.Table {
	t := &schema.Table{Name: name}
	if len(pk) > 0 {
		t.PrimaryKey = &schema.PrimaryKey{Name: name + "_pkey", Columns: pk}
	}
	for _, c := range columns {
		t.Columns = append(t.Columns, schema.Column{Name: c, Type: "text"})
	}
	return t
}

func testCatalog() *schema.Catalog {
	parcel := table("parcel", []string{"id"}, "id", "name", "owner_id")
	parcel.Columns = append(parcel.Columns, schema.Column{Name: "geom", Type: "geometry", Geometry: true, SRID: 4326})

	return schema.NewCatalog(
		parcel,
		table("owner", []string{"id"}, "id", "name"),
		table("feature", []string{"id"}, "id", "name"),
		table("segment", []string{"id"}, "id", "feature_id", "length"),
		table("node", []string{"id"}, "id", "parent_id", "label"),
		table("link", nil, "from_id", "to_id"),
		table("mapped_feature", []string{"id"}, "id", "name", "unit_id"),
		table("geologic_unit", []string{"id"}, "id", "name", "lithology_id"),
		table("lithology", []string{"id"}, "id", "label"),
		table("unit_colour", []string{"unit_id", "colour"}, "unit_id", "colour"),
		table("colours", []string{"id"}, "id", "unit_id"),
	)
}

type geology struct {
	feature   *mapping.FeatureTypeMapping
	unit      *mapping.FeatureTypeMapping
	lithology *mapping.FeatureTypeMapping
}

func geologyMappings() geology {
	lithology := &mapping.FeatureTypeMapping{
		Name:        "gsml:Lithology",
		SourceTable: "lithology",
		Attributes: []mapping.AttributeMapping{
			{Target: "FEATURE_LINK", Source: filter.Prop("id")},
			{Target: "gsml:label", Source: filter.Prop("label")},
		},
	}
	unit := &mapping.FeatureTypeMapping{
		Name:        "gsml:GeologicUnit",
		SourceTable: "geologic_unit",
		Attributes: []mapping.AttributeMapping{
			{Target: "FEATURE_LINK", Source: filter.Prop("id")},
			{Target: "gml:name", Source: filter.Prop("name")},
			{Target: "gsml:colour", MultipleValue: &mapping.MultipleValue{
				ID:           "colours",
				SourceColumn: "id",
				TargetTable:  "unit_colour",
				TargetColumn: "unit_id",
				Value:        filter.Prop("colour"),
				Properties:   []string{"colour"},
			}},
			{Target: "gsml:composition", Source: filter.Prop("lithology_id"), Chain: &mapping.FeatureChaining{
				LinkElement: "gsml:Lithology",
				LinkField:   "FEATURE_LINK",
				Mapping:     lithology,
			}},
		},
	}
	feature := &mapping.FeatureTypeMapping{
		Name:        "gsml:MappedFeature",
		SourceTable: "mapped_feature",
		Attributes: []mapping.AttributeMapping{
			{Target: "gml:name", Source: filter.Prop("name")},
			{Target: "gsml:specification", Source: filter.Prop("unit_id"), Chain: &mapping.FeatureChaining{
				LinkElement: "gsml:GeologicUnit",
				LinkField:   "FEATURE_LINK",
				Mapping:     unit,
			}},
		},
	}
	return geology{feature: feature, unit: unit, lithology: lithology}
}

const (
	unitName       = "gsml:specification/gsml:GeologicUnit/gml:name"
	lithologyLabel = "gsml:specification/gsml:GeologicUnit/gsml:composition/gsml:Lithology/gsml:label"
)
