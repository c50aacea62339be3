package inventory_test

import (
	"testing"

	"github.com/BearBump/CampusCars/internal/catalog"
	"github.com/BearBump/CampusCars/internal/inventory"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/stretchr/testify/require"
)

func ids(vs []models.Vehicle) []int64 {
	out := make([]int64, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func TestQuery_NoParamsKeepsCatalogOrder(t *testing.T) {
	cat := catalog.Static()
	out := inventory.Query(cat, inventory.QueryParams{})
	require.Equal(t, cat, out)
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	cat := catalog.Static()
	before := ids(cat)
	_ = inventory.Query(cat, inventory.QueryParams{Sort: inventory.SortPriceHigh})
	require.Equal(t, before, ids(cat))
}

func TestQuery_EmptyCatalog(t *testing.T) {
	out := inventory.Query(nil, inventory.QueryParams{Make: "Toyota", Sort: inventory.SortPriceLow})
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestQuery_MakeFilterNarrows(t *testing.T) {
	cat := catalog.Static()
	for _, m := range inventory.AvailableMakes(cat) {
		out := inventory.Query(cat, inventory.QueryParams{Make: m})
		require.LessOrEqual(t, len(out), len(cat))
		require.NotEmpty(t, out)
		for _, v := range out {
			require.Equal(t, m, v.Make)
		}
	}
}

func TestQuery_MakeFilterIsCaseSensitive(t *testing.T) {
	out := inventory.Query(catalog.Static(), inventory.QueryParams{Make: "toyota"})
	require.Empty(t, out)
}

func TestQuery_TypeFilterCaseInsensitive(t *testing.T) {
	cat := catalog.Static()
	upper := inventory.Query(cat, inventory.QueryParams{Type: "SUV"})
	lower := inventory.Query(cat, inventory.QueryParams{Type: "suv"})
	require.Equal(t, lower, upper)
	require.Len(t, lower, 10)
	for _, v := range lower {
		require.Equal(t, models.BodySUV, v.Type)
	}
}

func TestQuery_KnownTypeWithNoMatchesIsEmpty(t *testing.T) {
	out := inventory.Query(catalog.Static(), inventory.QueryParams{Type: "minivan"})
	require.Empty(t, out)
}

func TestQuery_UnknownTypeIsIgnored(t *testing.T) {
	cat := catalog.Static()
	out := inventory.Query(cat, inventory.QueryParams{Type: "spaceship"})
	require.Equal(t, ids(cat), ids(out))
}

func TestQuery_SortExamples(t *testing.T) {
	cat := []models.Vehicle{
		{ID: 1, Make: "A", Model: "a", Year: 2020, Price: 18500, Mileage: 30000, Type: models.BodySedan},
		{ID: 2, Make: "B", Model: "b", Year: 2022, Price: 16200, Mileage: 10000, Type: models.BodySedan},
		{ID: 3, Make: "C", Model: "c", Year: 2020, Price: 28900, Mileage: 20000, Type: models.BodyCoupe},
	}

	require.Equal(t, []int64{2, 1, 3}, ids(inventory.Query(cat, inventory.QueryParams{Sort: inventory.SortPriceLow})))
	require.Equal(t, []int64{3, 1, 2}, ids(inventory.Query(cat, inventory.QueryParams{Sort: inventory.SortPriceHigh})))
	// 1 and 3 tie on year and keep catalog order.
	require.Equal(t, []int64{2, 1, 3}, ids(inventory.Query(cat, inventory.QueryParams{Sort: inventory.SortYearNew})))
	require.Equal(t, []int64{2, 3, 1}, ids(inventory.Query(cat, inventory.QueryParams{Sort: inventory.SortMilesLow})))
	require.Equal(t, []int64{1, 2, 3}, ids(inventory.Query(cat, inventory.QueryParams{Sort: inventory.SortRecommended})))
}

func TestQuery_StableTiesKeepCatalogOrder(t *testing.T) {
	out := inventory.Query(catalog.Static(), inventory.QueryParams{Sort: inventory.SortPriceHigh})
	// GR86 (id 3) and Mustang (id 22) both list at 28900.
	pos := map[int64]int{}
	for i, v := range out {
		pos[v.ID] = i
	}
	require.Less(t, pos[3], pos[22])
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i-1].Price, out[i].Price)
	}
}

func TestQuery_Deterministic(t *testing.T) {
	cat := catalog.Static()
	for _, k := range inventory.SortKeys {
		p := inventory.QueryParams{Sort: k}
		first := inventory.Query(cat, p)
		require.Equal(t, first, inventory.Query(cat, p))
		require.Equal(t, first, inventory.Query(first, p), "sorting sorted output must be a no-op for %s", k)
	}
}

func TestQuery_UnknownSortKeyBehavesAsRecommended(t *testing.T) {
	cat := catalog.Static()
	out := inventory.Query(cat, inventory.QueryParams{Sort: "cheapestFirst!!"})
	require.Equal(t, ids(cat), ids(out))
}

func TestQuery_ToyotaByPriceLow(t *testing.T) {
	out := inventory.Query(catalog.Static(), inventory.QueryParams{Make: "Toyota", Sort: inventory.SortPriceLow})
	require.Len(t, out, 4)

	var got []string
	for _, v := range out {
		got = append(got, v.Model)
	}
	require.Equal(t, []string{"Corolla", "Camry", "RAV4", "GR86"}, got)
	require.Equal(t, []float64{16200, 18500, 21900, 28900}, []float64{out[0].Price, out[1].Price, out[2].Price, out[3].Price})
}

func TestAvailableMakes(t *testing.T) {
	require.Equal(t,
		[]string{"Chevrolet", "Ford", "Honda", "Kia", "Mazda", "Nissan", "Subaru", "Toyota"},
		inventory.AvailableMakes(catalog.Static()))
	require.Empty(t, inventory.AvailableMakes(nil))

	// Byte-wise order: uppercase sorts before lowercase.
	got := inventory.AvailableMakes([]models.Vehicle{{Make: "audi"}, {Make: "BMW"}, {Make: "Audi"}, {Make: "BMW"}})
	require.Equal(t, []string{"Audi", "BMW", "audi"}, got)
}

func TestParseSortKey(t *testing.T) {
	require.Equal(t, inventory.SortPriceLow, inventory.ParseSortKey("priceLow"))
	require.Equal(t, inventory.SortMilesLow, inventory.ParseSortKey(" milesLow "))
	require.Equal(t, inventory.SortRecommended, inventory.ParseSortKey(""))
	require.Equal(t, inventory.SortRecommended, inventory.ParseSortKey("PRICELOW"))
}

func TestQueryParams_Normalized(t *testing.T) {
	p := inventory.QueryParams{Make: " Toyota ", Type: "SUV", Sort: "bogus"}.Normalized()
	require.Equal(t, inventory.QueryParams{Make: "Toyota", Type: "suv", Sort: inventory.SortRecommended}, p)
}

func TestCountByType(t *testing.T) {
	counts := inventory.CountByType(catalog.Static())
	require.Equal(t, 7, counts[models.BodySedan])
	require.Equal(t, 3, counts[models.BodyCoupe])
	require.Equal(t, 10, counts[models.BodySUV])
	require.Equal(t, 2, counts[models.BodyTruck])
	require.Equal(t, 3, counts[models.BodyHatchback])
	require.Equal(t, 0, counts[models.BodyMinivan])
}
