package mocap

import "testing"

func TestHungarianAssign_Empty(t *testing.T) {
	if result := hungarianAssign(nil); result != nil {
		t.Errorf("expected nil for empty cost matrix, got %v", result)
	}
}

func TestHungarianAssign_SingleElement(t *testing.T) {
	result := hungarianAssign([][]float64{{5.0}})
	if len(result) != 1 || result[0] != 0 {
		t.Errorf("expected [0], got %v", result)
	}
}

func TestHungarianAssign_SquareOptimal(t *testing.T) {
	// Classic 3x3 assignment problem:
	//   [1 2 3]     Optimal: row0→col0 (1), row1→col1 (4), row2→col2 (5) = 10
	//   [4 4 6]     NOT: row0→col0 (1), row1→col2 (6), row2→col1 (8) = 15
	//   [9 8 5]
	cost := [][]float64{
		{1, 2, 3},
		{4, 4, 6},
		{9, 8, 5},
	}
	result := hungarianAssign(cost)
	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}

	total := 0.0
	for i, j := range result {
		if j < 0 {
			t.Errorf("row %d unassigned", i)
			continue
		}
		total += cost[i][j]
	}
	if total != 10.0 {
		t.Errorf("expected optimal cost 10, got %v (assignments: %v)", total, result)
	}
}

func TestHungarianAssign_Forbidden(t *testing.T) {
	// Row 1 has no reachable column.
	cost := [][]float64{
		{1, 2},
		{forbiddenCost, forbiddenCost},
	}
	result := hungarianAssign(cost)
	if len(result) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(result))
	}
	if result[0] < 0 {
		t.Errorf("row 0 should be assigned, got %d", result[0])
	}
	if result[1] != -1 {
		t.Errorf("row 1 should be unassigned (-1), got %d", result[1])
	}
}

func TestHungarianAssign_MoreRowsThanCols(t *testing.T) {
	// 3 rows, 2 cols → one row must go unassigned.
	cost := [][]float64{
		{1, 10},
		{10, 1},
		{5, 5},
	}
	result := hungarianAssign(cost)
	if len(result) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(result))
	}

	assigned := 0
	seen := map[int]bool{}
	for _, j := range result {
		if j >= 0 {
			assigned++
			if seen[j] {
				t.Errorf("column %d assigned twice", j)
			}
			seen[j] = true
		}
	}
	if assigned != 2 {
		t.Errorf("expected 2 assigned rows, got %d", assigned)
	}
	if result[0] != 0 || result[1] != 1 {
		t.Errorf("expected rows 0,1 to take their cheap columns, got %v", result)
	}
}

func TestHungarianAssign_EmptyColumns(t *testing.T) {
	result := hungarianAssign([][]float64{{}, {}})
	if len(result) != 2 || result[0] != -1 || result[1] != -1 {
		t.Errorf("expected all rows unassigned, got %v", result)
	}
}
