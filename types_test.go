package bread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypeAnnotationRoundTrip(t *testing.T) {
	tests := []string{
		"Int",
		"String?",
		"[Int]",
		"[String: Int]",
		"[Int]?",
		"Point",
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			d, err := ParseTypeAnnotation(text)
			require.NoError(t, err)
			assert.Equal(t, text, ToString(d))
		})
	}
}

func TestParseTypeAnnotationRejectsTrailingGarbage(t *testing.T) {
	_, err := ParseTypeAnnotation("Int extra")
	assert.Error(t, err)
}

func TestCompatibleOptionalRelaxations(t *testing.T) {
	classes := NewRegistry().AsClassRegistry()
	intType := NewIntType()
	optInt := NewOptionalType(NewIntType())
	nilType := NewNilType()

	assert.True(t, Compatible(intType, optInt, classes), "T -> Optional<T>")
	assert.True(t, Compatible(nilType, optInt, classes), "Nil -> Optional<T>")
	assert.False(t, Compatible(optInt, intType, classes), "Optional<T> is not assignable to bare T")
}

func TestCompatibleEmptyContainerLiteralPlaceholder(t *testing.T) {
	classes := NewRegistry().AsClassRegistry()
	emptyArray := NewArrayType(NewNilType())
	intArray := NewArrayType(NewIntType())
	assert.True(t, Compatible(emptyArray, intArray, classes), "[] must assign to any [T]")

	emptyDict := NewDictType(NewStringType(), NewNilType())
	stringIntDict := NewDictType(NewStringType(), NewIntType())
	assert.True(t, Compatible(emptyDict, stringIntDict, classes), "[:] must assign to any [String: V]")

	wrongKeyDict := NewDictType(NewIntType(), NewIntType())
	assert.False(t, Compatible(emptyDict, wrongKeyDict, classes), "empty dict literal key type must still match")
}

func TestCompatibleClassAncestorWidening(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterClass(&ClassDecl{
		Name: "Animal",
		Init: &FunctionDecl{Name: "init"},
	}))
	require.NoError(t, reg.RegisterClass(&ClassDecl{
		Name:       "Dog",
		ParentName: "Animal",
		Init:       &FunctionDecl{Name: "init"},
	}))
	classes := reg.AsClassRegistry()

	dog := NewClassType("Dog", "Animal", nil)
	animal := NewClassType("Animal", "", nil)
	assert.True(t, Compatible(dog, animal, classes))
	assert.False(t, Compatible(animal, dog, classes))
}
