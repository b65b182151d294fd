package fp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipe_StopsAtFirstFailure(t *testing.T) {
	errFirst := errors.New("first")
	calls := 0
	step := func(fail error) func(int) Result[int] {
		return func(v int) Result[int] {
			calls++
			if fail != nil {
				return Failure[int](fail)
			}
			return Success(v + 1)
		}
	}

	r := Pipe(0, step(nil), step(errFirst), step(errors.New("second")))

	require.True(t, IsFailure(r))
	assert.ErrorIs(t, GetError(r), errFirst)
	assert.Equal(t, 2, calls)
}

func TestTraverse(t *testing.T) {
	double := func(v int) Result[int] { return Success(v * 2) }

	v, err := Unwrap(Traverse(double)([]int{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, v)

	boom := errors.New("boom")
	failOnTwo := func(v int) Result[int] {
		if v == 2 {
			return Failure[int](boom)
		}
		return Success(v)
	}
	_, err = Unwrap(Traverse(failOnTwo)([]int{1, 2, 3}))
	assert.ErrorIs(t, err, boom)
}

func TestFromOption(t *testing.T) {
	missing := errors.New("missing")

	v, err := Unwrap(FromOption[string](missing)(Some("x")))
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = Unwrap(FromOption[string](missing)(None[string]()))
	assert.ErrorIs(t, err, missing)
}

func TestValidators(t *testing.T) {
	assert.Error(t, Required("name")("   "))
	assert.NoError(t, Required("name")("Thandi"))
	assert.Error(t, Email("email")("not-an-email"))
	assert.NoError(t, Email("email")("a@b.co"))
	assert.Error(t, Range("quantity", 1, 10)(11))
	assert.NoError(t, Range("quantity", 1, 10)(10))
	assert.Error(t, NotEmpty[int]("items")(nil))

	var ve ValidationError
	err := FirstError("", Required("a"), Email("b"))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "a", ve.Field)
}

func TestCheck(t *testing.T) {
	r := Check(Range("q", 1, 3))(5)
	assert.True(t, IsFailure(r))

	v, err := Unwrap(Check(Range("q", 1, 3))(2))
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLookup(t *testing.T) {
	m := map[string]int{"a": 1}
	count := func(opt Option[int]) int {
		return FoldOpt(func() int { return -1 }, func(v int) int { return v })(opt)
	}
	assert.Equal(t, 1, count(Lookup(m, "a")))
	assert.Equal(t, -1, count(Lookup(m, "b")))
	assert.Equal(t, -1, count(Lookup[string, int](nil, "a")))
}
