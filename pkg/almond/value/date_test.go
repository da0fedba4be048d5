package value

import (
	"testing"
	"time"
)

func TestParseDateFull(t *testing.T) {
	d, ok := ParseDate("2020-06-21", PresentRefReject)
	if !ok {
		t.Fatal("2020-06-21 should parse")
	}
	want := Date{Year: 2020, Month: 6, Day: 21}
	if d != want {
		t.Errorf("got %+v, want %+v", d, want)
	}
}

func TestParseDateWildcardYear(t *testing.T) {
	d, ok := ParseDate("****-06-21", PresentRefReject)
	if !ok {
		t.Fatal("****-06-21 should parse")
	}
	if d.Year != Unknown || d.Month != 6 || d.Day != 21 {
		t.Errorf("got %+v, want year=-1 month=6 day=21", d)
	}
}

func TestParseDateWildcardMonthDay(t *testing.T) {
	d, ok := ParseDate("2020-XX-XX", PresentRefReject)
	if !ok {
		t.Fatal("2020-XX-XX should parse")
	}
	if d.Year != 2020 || d.Month != Unknown || d.Day != Unknown {
		t.Errorf("got %+v, want year=2020 month=-1 day=-1", d)
	}
}

func TestParseDateWithTime(t *testing.T) {
	d, ok := ParseDate("2017-01-30T14:30:15", PresentRefReject)
	if !ok {
		t.Fatal("should parse")
	}
	want := Date{Year: 2017, Month: 1, Day: 30, Hour: 14, Minute: 30, Second: 15}
	if d != want {
		t.Errorf("got %+v, want %+v", d, want)
	}
}

func TestParseDateFractionalSeconds(t *testing.T) {
	d, ok := ParseDate("2017-01-30T14:30:15.250Z", PresentRefReject)
	if !ok {
		t.Fatal("should parse")
	}
	if d.Second != 15.25 {
		t.Errorf("second = %g, want 15.25", d.Second)
	}
}

func TestParseDateWildcardHour(t *testing.T) {
	d, ok := ParseDate("2017-01-30TXX:30", PresentRefReject)
	if !ok {
		t.Fatal("should parse")
	}
	if d.Hour != Unknown || d.Minute != 30 {
		t.Errorf("got hour=%d minute=%d, want hour=-1 minute=30", d.Hour, d.Minute)
	}
}

func TestParseDateNoTimePartDefaultsZero(t *testing.T) {
	d, ok := ParseDate("1999-12-31", PresentRefReject)
	if !ok {
		t.Fatal("should parse")
	}
	if d.Hour != 0 || d.Minute != 0 || d.Second != 0 {
		t.Errorf("time defaults should be zero, got %+v", d)
	}
}

func TestParseDateBC(t *testing.T) {
	d, ok := ParseDate("-0044-03-15", PresentRefReject)
	if !ok {
		t.Fatal("should parse")
	}
	if d.Year != -44 {
		t.Errorf("year = %d, want -44", d.Year)
	}
}

func TestParseDateGarbage(t *testing.T) {
	for _, s := range []string{"tomorrow", "20-1-1", "2020/01/01", "abcd-ef-gh"} {
		if _, ok := ParseDate(s, PresentRefReject); ok {
			t.Errorf("%q should not parse", s)
		}
	}
}

func TestParseDatePresentRef(t *testing.T) {
	if _, ok := ParseDate("PRESENT_REF", PresentRefReject); ok {
		t.Error("PRESENT_REF should be rejected under PresentRefReject")
	}
	d, ok := ParseDate("PRESENT_REF", PresentRefNow)
	if !ok {
		t.Fatal("PRESENT_REF should parse under PresentRefNow")
	}
	if d.Year != time.Now().Year() {
		t.Errorf("year = %d, want current year", d.Year)
	}
}
