package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldsCloneIsIndependent(t *testing.T) {
	orig := Fields{"firstName": "Abebe"}
	cp := orig.Clone()
	cp["firstName"] = "Kebede"
	assert.Equal(t, "Abebe", orig["firstName"])
}

func TestFieldsMergeKeepsUnseenKeys(t *testing.T) {
	stored := Fields{"firstName": "Abebe", "middleName": "Tesfaye", "lastName": "Bekele"}
	stored.Merge(Fields{"firstName": "Almaz", "lastName": "Bekele"})

	assert.Equal(t, "Almaz", stored["firstName"])
	//middleName was not in the update, so it survives
	assert.Equal(t, "Tesfaye", stored["middleName"])
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		expected string
	}{
		{name: "all parts", fields: Fields{"firstName": "Abebe", "middleName": "Tesfaye", "lastName": "Bekele"}, expected: "Abebe Tesfaye Bekele"},
		{name: "skipped middle", fields: Fields{"firstName": "Abebe", "lastName": "Bekele"}, expected: "Abebe Bekele"},
		{name: "empty", fields: Fields{}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{Fields: tt.fields}
			assert.Equal(t, tt.expected, c.FullName())
		})
	}
}
