package report

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

func TestSummarize(t *testing.T) {
	Convey("Given a frame with nulls and a stratum column", t, func() {
		f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
			{Name: "x", Type: ds.KindFloat, Nullable: true},
			{Name: "label", Type: ds.KindString, Nullable: true},
		}}, [][]any{
			{1.0, "a"},
			{nil, "b"},
			{3.0, "a"},
			{5.0, nil},
		})
		So(err, ShouldBeNil)

		Convey("Summarize counts values, nulls and strata", func() {
			s, err := Summarize("train", f, "label")
			So(err, ShouldBeNil)
			So(s.Rows, ShouldEqual, 4)
			So(s.Columns, ShouldHaveLength, 2)
			So(s.Columns[0].Count, ShouldEqual, 3)
			So(s.Columns[0].Nulls, ShouldEqual, 1)
			So(s.Columns[0].Num.Mean, ShouldEqual, 3.0)
			So(s.Columns[1].Num, ShouldBeNil)
			So(s.Strata, ShouldResemble, map[string]int{"a": 2, "b": 1, NullStratum: 1})

			text := s.Text()
			So(text, ShouldContainSubstring, "train: 4 rows")
			So(text, ShouldContainSubstring, "- x (float): count=3 nulls=1 min=1 max=5 mean=3")

			b, err := json.Marshal(s)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"a":2,"b":1}`)
		})

		Convey("Summarize without a stratum column leaves strata empty", func() {
			s, err := Summarize("all", f, "")
			So(err, ShouldBeNil)
			So(s.Strata, ShouldBeNil)
		})

		Convey("An unknown stratum column is a schema error", func() {
			_, err := Summarize("all", f, "nope")
			So(err, ShouldNotBeNil)
		})
	})
}
