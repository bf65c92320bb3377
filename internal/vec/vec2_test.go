package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToChunkCoords(t *testing.T) {
	cases := []struct {
		name  string
		tile  Vec2
		chunk Vec2
		local Vec2
	}{
		{"начало координат", Vec2{0, 0}, Vec2{0, 0}, Vec2{0, 0}},
		{"внутри первого чанка", Vec2{63, 63}, Vec2{0, 0}, Vec2{63, 63}},
		{"граница чанка", Vec2{64, 64}, Vec2{1, 1}, Vec2{0, 0}},
		{"отрицательные координаты", Vec2{-1, -1}, Vec2{-1, -1}, Vec2{63, 63}},
		{"дальние отрицательные", Vec2{-64, -65}, Vec2{-1, -2}, Vec2{0, 63}},
		{"смешанные знаки", Vec2{-130, 70}, Vec2{-3, 1}, Vec2{62, 6}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.chunk, tc.tile.ToChunkCoords(),
				"неверные координаты чанка для тайла %v", tc.tile)
			assert.Equal(t, tc.local, tc.tile.LocalInChunk(),
				"неверные локальные координаты для тайла %v", tc.tile)
		})
	}
}

func TestChunkAddressingRoundTrip(t *testing.T) {
	// Глобальная позиция восстанавливается из чанка и локальной части
	for x := -200; x <= 200; x += 7 {
		for y := -200; y <= 200; y += 11 {
			p := Vec2{x, y}
			chunk := p.ToChunkCoords()
			local := p.LocalInChunk()
			restored := Vec2{chunk.X*64 + local.X, chunk.Y*64 + local.Y}
			if restored != p {
				t.Fatalf("позиция %v не восстановилась: чанк %v, локально %v", p, chunk, local)
			}
		}
	}
}

func TestChebyshevDistance(t *testing.T) {
	assert.Equal(t, 0, Vec2{5, 5}.ChebyshevDistanceTo(Vec2{5, 5}))
	assert.Equal(t, 3, Vec2{0, 0}.ChebyshevDistanceTo(Vec2{3, 1}))
	assert.Equal(t, 4, Vec2{-2, 2}.ChebyshevDistanceTo(Vec2{2, 0}))
}

func TestVec2FloatToVec2Floor(t *testing.T) {
	// Отрицательные позиции округляются вниз, а не к нулю
	assert.Equal(t, Vec2{-1, -1}, Vec2Float{-0.5, -0.5}.ToVec2())
	assert.Equal(t, Vec2{2, 3}, Vec2Float{2.9, 3.1}.ToVec2())
	assert.Equal(t, Vec2{-3, 0}, Vec2Float{-2.01, 0.99}.ToVec2())
}

func TestVec2FloatOps(t *testing.T) {
	v := Vec2Float{3, 4}
	assert.Equal(t, 5.0, v.Length(), "длина вектора (3,4)")
	n := v.Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-9, "нормализованный вектор имеет длину 1")
	assert.Equal(t, Vec2Float{0, 0}, Vec2Float{}.Normalized(), "нулевой вектор не нормализуется")
	assert.Equal(t, Vec2Float{6, 8}, v.Mul(2))
	assert.Equal(t, Vec2Float{4, 6}, v.Add(Vec2Float{1, 2}))
	assert.InDelta(t, 5.0, Vec2Float{0, 0}.DistanceTo(Vec2Float{3, 4}), 1e-9)
}
