package domain

import "testing"

func validProduct() Unit {
	return Unit{
		Text: "🍫 [제품 정보]\n- 제품명: 다크초코 70",
		Kind: KindProduct,
		Attrs: map[string]string{
			AttrBrandID:     "3",
			AttrBrandName:   "카카오팜",
			AttrProductName: "다크초코 70",
		},
	}
}

func TestValidateUnit_Valid(t *testing.T) {
	if err := ValidateUnit(validProduct()); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestValidateUnit_EmptyText(t *testing.T) {
	u := validProduct()
	u.Text = ""
	if err := ValidateUnit(u); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestValidateUnit_UnknownKind(t *testing.T) {
	u := validProduct()
	u.Kind = Kind("review")
	if err := ValidateUnit(u); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestValidateUnit_MissingAttr(t *testing.T) {
	u := validProduct()
	delete(u.Attrs, AttrProductName)
	if err := ValidateUnit(u); err == nil {
		t.Fatal("expected error for missing product_name")
	}
}

func TestValidateUnit_SentinelAttrAllowed(t *testing.T) {
	// A sentinel value is present, not missing; it must validate.
	u := validProduct()
	u.Attrs[AttrBrandName] = Sentinel
	if err := ValidateUnit(u); err != nil {
		t.Fatalf("sentinel attr should validate, got %v", err)
	}
}

func TestAttr_Missing(t *testing.T) {
	u := Unit{Kind: KindBrand, Attrs: map[string]string{}}
	if got := u.Attr(AttrBrandName); got != Sentinel {
		t.Errorf("expected sentinel, got %q", got)
	}
}
