package gantt

import (
	"math/rand/v2"
	"testing"

	"github.com/flexgantt/flexgantt/pkg/task"
)

func TestMatch(t *testing.T) {
	tasks := []task.Task{
		mk("1", "2022-01-01", "2022-01-02", "type", "A", "size", "S"),
		mk("2", "2022-01-01", "2022-01-02", "type", "A", "size", "L"),
		mk("3", "2022-01-01", "2022-01-02", "type", "A"),
		mk("4", "2022-01-01", "2022-01-02", "type", "A", "size", "S"),
	}
	depths := depthsOf("type", "size")

	got := Match(tasks, depths, Combination(strs("A", "S")))
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "4" {
		t.Errorf("Match(A,S) = %v", got)
	}
	if got := Match(tasks, depths, Combination(strs("A"))); len(got) != 0 {
		t.Errorf("Match() with short combination = %v, want none", got)
	}
}

func TestMatchStrictEquality(t *testing.T) {
	tasks := []task.Task{
		mk("num", "2022-01-01", "2022-01-02", "n", 1),
		mk("str", "2022-01-01", "2022-01-02", "n", "1"),
	}
	got := Match(tasks, depthsOf("n"), Combination{task.Number(1)})
	if len(got) != 1 || got[0].ID != "num" {
		t.Errorf("Match(Number(1)) = %v, want only num", got)
	}
}

func TestPartitionProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for iter := 0; iter < 30; iter++ {
		tasks := randomTasks(r, 1+r.IntN(50))
		depths := depthsOf("a", "b", "c")
		combos := Combinations(ValueSets(tasks, depths))
		buckets, orphans := Partition(tasks, depths, combos)

		count := make(map[string]int)
		for i, b := range buckets {
			want := Match(tasks, depths, combos[i])
			if len(b) != len(want) {
				t.Fatalf("bucket %d has %d tasks, Match() has %d", i, len(b), len(want))
			}
			for _, tk := range b {
				count[tk.ID]++
			}
		}
		for _, tk := range orphans {
			if tk.HasAttr("c") {
				t.Fatalf("task %s has every grouping value but was orphaned", tk.ID)
			}
			count[tk.ID]++
		}
		for _, tk := range tasks {
			if count[tk.ID] != 1 {
				t.Fatalf("task %s placed %d times, want exactly once", tk.ID, count[tk.ID])
			}
		}
	}
}

func TestPartitionDeepFallback(t *testing.T) {
	attrs := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9"}
	kv := make([]any, 0, 2*len(attrs))
	for _, a := range attrs {
		kv = append(kv, a, "v")
	}
	tasks := []task.Task{
		mk("full", "2022-01-01", "2022-01-02", kv...),
		mk("partial", "2022-01-01", "2022-01-02", "a1", "v"),
	}
	depths := depthsOf(attrs...)
	combos := Combinations(ValueSets(tasks, depths))
	buckets, orphans := Partition(tasks, depths, combos)
	if len(buckets) != 1 || len(buckets[0]) != 1 || buckets[0][0].ID != "full" {
		t.Errorf("buckets = %v", buckets)
	}
	if len(orphans) != 1 || orphans[0].ID != "partial" {
		t.Errorf("orphans = %v", orphans)
	}
}
