package gf256

import "testing"

func TestTableCycle(t *testing.T) {
	tb := Get()
	if tb.Exps[0] != 1 {
		t.Fatalf("exps[0] = %d, want 1", tb.Exps[0])
	}
	if tb.Exps[8] != 29 {
		t.Fatalf("exps[8] = %d, want 29", tb.Exps[8])
	}
	if tb.Exps[255] != 1 {
		t.Fatalf("exps[255] = %d, want 1", tb.Exps[255])
	}
	for i := 0; i < 255; i++ {
		if int(tb.Logs[tb.Exps[i]]) != i {
			t.Fatalf("logs[exps[%d]] = %d, want %d", i, tb.Logs[tb.Exps[i]], i)
		}
	}
}

func TestMulDivIdentities(t *testing.T) {
	for a := 1; a < 256; a++ {
		for _, b := range []uint8{1, 2, 3, 29, 255} {
			prod := Mul(uint8(a), b)
			if prod == 0 {
				t.Fatalf("Mul(%d,%d) = 0, want nonzero", a, b)
			}
			if Div(prod, b) != uint8(a) {
				t.Fatalf("Div(Mul(%d,%d),%d) = %d, want %d", a, b, b, Div(prod, b), a)
			}
		}
	}
	if Mul(0, 5) != 0 || Mul(5, 0) != 0 {
		t.Fatal("Mul with zero operand must be zero")
	}
}

func TestAddIsXor(t *testing.T) {
	if Add(0x53, 0xCA) != 0x53^0xCA {
		t.Fatal("Add must be XOR")
	}
	if Add(Add(7, 9), 9) != 7 {
		t.Fatal("Add must be its own inverse (subtraction)")
	}
}
