package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Strategies(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		rut    string
		source Source
	}{
		{
			name:   "RUN query param from carnet QR",
			raw:    "https://portal.sidiv.registrocivil.cl/docstatus?RUN=12345678-5&type=CEDULA&serial=A123456789&mrz=123456789",
			rut:    "12.345.678-5",
			source: SourceQuery,
		},
		{
			name:   "RUT query param",
			raw:    "https://example.cl/v?RUT=6000000-k",
			rut:    "6.000.000-K",
			source: SourceQuery,
		},
		{
			name:   "invalid query candidate falls through to text",
			raw:    "https://x.cl/?RUN=12345678-9 otro 11.111.111-1",
			rut:    "11.111.111-1",
			source: SourceText,
		},
		{
			name:   "dotted RUT inside PDF417 text",
			raw:    "CHL\nPEREZ SOTO JUAN\nRUN 12.345.678-5\n19900101",
			rut:    "12.345.678-5",
			source: SourceText,
		},
		{
			name:   "digits without dash",
			raw:    "123456785",
			rut:    "12.345.678-5",
			source: SourceText,
		},
		{
			name:   "spaces inside the number",
			raw:    "12 345 678 - 5",
			rut:    "12.345.678-5",
			source: SourceText,
		},
		{
			name:   "commas only normalize as a whole",
			raw:    "12,345,678-5",
			rut:    "12.345.678-5",
			source: SourceWhole,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.rut, got.RUT.String())
			assert.Equal(t, tc.source, got.Source)
		})
	}
}

func TestResolve_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"12345678-9",
		"https://x.cl/?RUN=12345678-9",
		"sin numeros por aqui",
		"12345-5",
	} {
		_, err := Resolve(raw)
		assert.ErrorIs(t, err, ErrNoValidID, "raw %q", raw)
	}
}

// El DV aceptado es exactamente el del algoritmo iterativo: cualquier otro se rechaza.
func TestResolve_AcceptsOnlyComputedCheckDigit(t *testing.T) {
	bodies := []int{123456, 7654321, 6000000, 12345678, 10000013, 24965885, 987654321}
	digits := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "K"}

	for _, body := range bodies {
		want := CheckDigit(body)
		for _, dv := range digits {
			raw := RUT{Body: body, DV: dv}.Compact()
			got, err := Resolve(raw)
			if dv == want {
				require.NoError(t, err, "raw %s", raw)
				assert.Equal(t, body, got.RUT.Body)
			} else {
				assert.ErrorIs(t, err, ErrNoValidID, "raw %s", raw)
			}
		}
	}
}

func TestResolve_Name(t *testing.T) {
	t.Run("NOMBRES and APELLIDOS params", func(t *testing.T) {
		got, err := Resolve("https://x.cl/?RUN=12345678-5&NOMBRES=JUAN+ANDRES&APELLIDOS=PEREZ%20SOTO")
		require.NoError(t, err)
		assert.Equal(t, "Juan Andres Perez Soto", got.Name)
	})

	t.Run("NAME param", func(t *testing.T) {
		got, err := Resolve("https://x.cl/?RUT=11111111-1&NAME=maria%20jos%C3%A9%20rojas")
		require.NoError(t, err)
		assert.Equal(t, "Maria José Rojas", got.Name)
	})

	t.Run("longest name-like line", func(t *testing.T) {
		raw := "CHL 19900101 M\r\nPEREZ SOTO JUAN ANDRES\r\nJUAN\r\n12345678-5|IDCHL123456789"
		got, err := Resolve(raw)
		require.NoError(t, err)
		assert.Equal(t, "Perez Soto Juan Andres", got.Name)
	})

	t.Run("no candidate gives empty name", func(t *testing.T) {
		got, err := Resolve("12345678-5")
		require.NoError(t, err)
		assert.Empty(t, got.Name)
	})
}

func TestNameLike(t *testing.T) {
	cases := []struct {
		line string
		want string
		ok   bool
	}{
		{"PEREZ SOTO", "PEREZ SOTO", true},
		{"ROJAS  ÑUÑEZ, MARÍA", "ROJAS ÑUÑEZ MARÍA", true},
		{"JUAN PEREZ 12", "JUAN PEREZ", true},
		{"JUAN PEREZ 123", "", false},
		{"PEREZ", "", false},
		{"A B", "", false},
	}

	for _, tc := range cases {
		got, ok := nameLike(tc.line)
		assert.Equal(t, tc.ok, ok, "line %q", tc.line)
		assert.Equal(t, tc.want, got, "line %q", tc.line)
	}
}

func TestSplitName(t *testing.T) {
	n, a := SplitName("Juan Andres Perez")
	assert.Equal(t, "Juan Andres", n)
	assert.Equal(t, "Perez", a)

	n, a = SplitName("Juan")
	assert.Equal(t, "Juan", n)
	assert.Empty(t, a)

	n, a = SplitName("   ")
	assert.Empty(t, n)
	assert.Empty(t, a)
}
