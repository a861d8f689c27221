package util

import (
	"math"
	"os"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetKeysSorted[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	slices.Sort(keys)
	return keys
}

// Missing returns the entries of incoming that are not in current, in the
// order they arrive. Repeats within incoming are kept.
func Missing[A comparable](current []A, incoming []A) []A {
	var res []A
	for _, v := range incoming {
		if !slices.Contains(current, v) {
			res = append(res, v)
		}
	}
	return res
}

func OpenFileOrPanic(path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		panic("Couldn't read file: " + err.Error())
	}
	return f
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Mean[A constraints.Integer | constraints.Float](nums []A) float64 {
	if len(nums) == 0 {
		return 0
	}
	var total float64
	for _, v := range nums {
		total += float64(v)
	}
	return total / float64(len(nums))
}

func Median[A constraints.Integer | constraints.Float](nums []A) float64 {
	if len(nums) == 0 {
		return 0
	}
	sorted := slices.Clone(nums)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

// StdDev is the sample standard deviation. It is zero for fewer than two
// values.
func StdDev[A constraints.Integer | constraints.Float](nums []A) float64 {
	if len(nums) < 2 {
		return 0
	}
	mean := Mean(nums)
	var sum float64
	for _, v := range nums {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(nums)-1))
}
