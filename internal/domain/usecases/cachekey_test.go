package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asila/asila/internal/domain/entities"
)

func TestBuildCacheKey_Format(t *testing.T) {
	key := BuildCacheKey("tenant-1", "Ward 12", "abc123", "hi")
	assert.Equal(t, "cache:tenant-1:ward-12:abc123:hi", key)
}

func TestBuildCacheKey_AbsentLocation(t *testing.T) {
	key := BuildCacheKey("tenant-1", "", "abc123", "en")
	assert.Equal(t, "cache:tenant-1:all:abc123:en", key)
}

func TestBuildCacheKey_Deterministic(t *testing.T) {
	a := BuildCacheKey("t", "Old Town Square", "fff", "en")
	b := BuildCacheKey("t", "Old Town Square", "fff", "en")
	assert.Equal(t, a, b)
	assert.Equal(t, "cache:t:old-town-square:fff:en", a)
}

func TestFingerprint_Shape(t *testing.T) {
	fp := Fingerprint("when does the water come", entities.DepartmentWater)
	assert.Len(t, fp, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", fp)
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("Power cut in my area", entities.DepartmentElectricity)
	b := Fingerprint("Power cut in my area", entities.DepartmentElectricity)
	assert.Equal(t, a, b)
}

func TestFingerprint_NormalizesCase(t *testing.T) {
	a := Fingerprint("POWER CUT", entities.DepartmentElectricity)
	b := Fingerprint("power cut", entities.DepartmentElectricity)
	assert.Equal(t, a, b)
}

func TestFingerprint_DepartmentChangesHash(t *testing.T) {
	a := Fingerprint("supply schedule", entities.DepartmentWater)
	b := Fingerprint("supply schedule", entities.DepartmentNone)
	assert.NotEqual(t, a, b)
}
