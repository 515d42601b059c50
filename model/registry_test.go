package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmodel-go/sqlmodel"
)

type Author struct {
	ID        int64     `db:"id" model:"pk,auto"`
	Name      string    `db:"name"`
	Posts     RelatedMany[Post] `rel:"table=posts,kind=one_to_many,local=id,remote=author_id,back=Author"`
}

type Post struct {
	ID       int64          `db:"id" model:"pk,auto"`
	Title    string         `db:"title"`
	AuthorID int64          `db:"author_id" model:"fk=authors.id,onDelete=cascade"`
	Price    decimal.Decimal `db:"price" model:"precision=10,scale=2"`
	Tag      *string        `db:"tag"`
	Created  time.Time      `db:"created_at"`
	PublicID uuid.UUID      `db:"public_id"`
}

func (Post) TableName() string { return "posts" }

type Vehicle struct {
	ID   int64  `db:"id" model:"pk,auto"`
	Make string `db:"make"`
}

func (Vehicle) TableName() string { return "vehicles" }

type Car struct {
	Vehicle `model:"inherits,discriminator=car"`
	Doors   int `db:"doors"`
}

type Truck struct {
	Vehicle `model:"inherits"`
	BedLengthCm int `db:"bed_length_cm"`
}

func TestCompile_DerivesTableNameFromTypeName(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Author{})
	require.NoError(t, err)
	assert.Equal(t, "authors", info.TableName)
}

func TestCompile_TableNamerOverride(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Post{})
	require.NoError(t, err)
	assert.Equal(t, "posts", info.TableName)
}

func TestCompile_PrimaryKeyFromTag(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Author{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, info.PrimaryKey)
}

func TestCompile_FieldTypeInference(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Post{})
	require.NoError(t, err)

	price := info.FieldByName("Price")
	require.NotNil(t, price)
	assert.Equal(t, "DECIMAL", price.SQLType)
	assert.Equal(t, 10, price.Precision)
	assert.Equal(t, 2, price.Scale)

	tag := info.FieldByName("Tag")
	require.NotNil(t, tag)
	assert.True(t, tag.Nullable)

	uuidField := info.FieldByName("PublicID")
	require.NotNil(t, uuidField)
	assert.Equal(t, "UUID", uuidField.SQLType)

	fk := info.FieldByName("AuthorID")
	require.NotNil(t, fk)
	assert.Equal(t, "authors", fk.ForeignKeyTable)
	assert.Equal(t, "id", fk.ForeignKeyColumn)
	assert.Equal(t, "cascade", fk.OnDelete)
}

func TestCompile_RelationshipOneToMany(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Author{})
	require.NoError(t, err)
	require.Len(t, info.Relationships, 1)
	rel := info.Relationships[0]
	assert.Equal(t, OneToMany, rel.Kind)
	assert.Equal(t, "posts", rel.RelatedTable)
	assert.Equal(t, "Author", rel.BackRef)
}

func TestCompile_SingleInheritance(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Car{})
	require.NoError(t, err)
	assert.Equal(t, InheritanceSingle, info.Inheritance.Strategy)
	assert.Equal(t, "car", info.Inheritance.DiscriminatorValue)
	assert.True(t, info.IsSingleChild())
}

func TestCompile_JoinedInheritanceInferredWithoutDiscriminatorValue(t *testing.T) {
	ClearRegistry()
	info, err := Compile(Truck{})
	require.NoError(t, err)
	assert.Equal(t, InheritanceJoined, info.Inheritance.Strategy)
	assert.True(t, info.IsJoinedChild())
}

func TestToRow_SingleInheritanceAddsDiscriminator(t *testing.T) {
	ClearRegistry()
	car := Car{Vehicle: Vehicle{ID: 1, Make: "Toyota"}, Doors: 4}
	names, values, err := ToRow(car)
	require.NoError(t, err)

	idx := -1
	for i, n := range names {
		if n == "type" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0, "expected discriminator column in %v", names)
	text, err := values[idx].Text()
	require.NoError(t, err)
	assert.Equal(t, "car", text)
}

func TestToRowFromRow_RoundTrip(t *testing.T) {
	ClearRegistry()
	original := Post{
		ID:       7,
		Title:    "Hello",
		AuthorID: 3,
		Price:    decimal.RequireFromString("19.99"),
		Created:  time.Now().UTC().Truncate(time.Microsecond),
		PublicID: uuid.New(),
	}
	names, values, err := ToRow(original)
	require.NoError(t, err)

	cols := sqlmodel.NewColumnInfo(names)
	row := sqlmodel.NewRow(cols, values)

	var hydrated Post
	require.NoError(t, FromRow(row, &hydrated))

	assert.Equal(t, original.ID, hydrated.ID)
	assert.Equal(t, original.Title, hydrated.Title)
	assert.Equal(t, original.AuthorID, hydrated.AuthorID)
	assert.True(t, original.Price.Equal(hydrated.Price))
	assert.Equal(t, original.PublicID, hydrated.PublicID)
	assert.Nil(t, hydrated.Tag)
}

func TestToRowFromRow_NullableField(t *testing.T) {
	ClearRegistry()
	tag := "featured"
	original := Post{ID: 1, Tag: &tag, Price: decimal.Zero, PublicID: uuid.New()}
	names, values, err := ToRow(original)
	require.NoError(t, err)

	row := sqlmodel.NewRow(sqlmodel.NewColumnInfo(names), values)
	var hydrated Post
	require.NoError(t, FromRow(row, &hydrated))
	require.NotNil(t, hydrated.Tag)
	assert.Equal(t, "featured", *hydrated.Tag)
}
