package golearn

import (
	"testing"

	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/knn"
	. "github.com/smartystreets/goconvey/convey"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/split"
)

func clusters(n int) (*ds.Frame, error) {
	rows := make([][]any, n)
	for i := range rows {
		jitter := float64(i%5) / 10
		if i%2 == 0 {
			rows[i] = []any{jitter, 1 - jitter, int64(i % 3), "near"}
		} else {
			rows[i] = []any{10 + jitter, 9 - jitter, int64(i % 3), "far"}
		}
	}
	return ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "x", Type: ds.KindFloat},
		{Name: "y", Type: ds.KindFloat},
		{Name: "bucket", Type: ds.KindInt},
		{Name: "label", Type: ds.KindString},
	}}, rows)
}

func TestConvert(t *testing.T) {
	Convey("Given a frame with a categorical class column", t, func() {
		f, err := clusters(6)
		So(err, ShouldBeNil)

		Convey("ToDenseInstances keeps every row and marks the class", func() {
			inst, err := ToDenseInstances(f, "label")
			So(err, ShouldBeNil)
			cols, rows := inst.Size()
			So(cols, ShouldEqual, 4)
			So(rows, ShouldEqual, 6)
			classes := inst.AllClassAttributes()
			So(classes, ShouldHaveLength, 1)
			So(classes[0].GetName(), ShouldEqual, "label")
		})

		Convey("FromDenseInstances converts back, numbers as floats", func() {
			inst, err := ToDenseInstances(f, "")
			So(err, ShouldBeNil)
			back, err := FromDenseInstances(inst)
			So(err, ShouldBeNil)
			So(back.Schema().Names(), ShouldResemble, []string{"x", "y", "bucket", "label"})
			v, _ := back.Value(1, "bucket")
			So(v, ShouldEqual, 1.0)
			v, _ = back.Value(1, "label")
			So(v, ShouldEqual, "far")
		})

		Convey("An unknown class column is rejected", func() {
			_, err := ToDenseInstances(f, "nope")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestKNNOnStratifiedSplit(t *testing.T) {
	Convey("Given separable clusters split by label", t, func() {
		f, err := clusters(80)
		So(err, ShouldBeNil)
		f, err = f.DropColumn("bucket")
		So(err, ShouldBeNil)
		train, test, err := split.Split(f, "label", 0.7, split.DefaultSeed)
		So(err, ShouldBeNil)
		So(test.Rows(), ShouldBeGreaterThan, 0)

		conv, err := NewConverter(f.Schema(), "label")
		So(err, ShouldBeNil)
		trainData, err := conv.Convert(train)
		So(err, ShouldBeNil)
		testData, err := conv.Convert(test)
		So(err, ShouldBeNil)

		Convey("KNN classifies the held out rows", func() {
			cls := knn.NewKnnClassifier("euclidean", "linear", 3)
			So(cls.Fit(trainData), ShouldBeNil)
			pred, err := cls.Predict(testData)
			So(err, ShouldBeNil)
			cm, err := evaluation.GetConfusionMatrix(testData, pred)
			So(err, ShouldBeNil)
			So(evaluation.GetAccuracy(cm), ShouldEqual, 1.0)
			t.Log(evaluation.GetSummary(cm))
		})
	})
}

func TestFillNaN(t *testing.T) {
	Convey("Given instances converted from a frame with numeric nulls", t, func() {
		f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
			{Name: "x", Type: ds.KindFloat, Nullable: true},
			{Name: "n", Type: ds.KindInt, Nullable: true},
			{Name: "label", Type: ds.KindString, Nullable: true},
		}}, [][]any{{1.5, nil, "a"}, {nil, 2, nil}, {nil, nil, "b"}})
		So(err, ShouldBeNil)
		inst, err := ToDenseInstances(f, "label")
		So(err, ShouldBeNil)

		Convey("FillNaN replaces every numeric null and leaves categories alone", func() {
			n, err := FillNaN(inst, -1)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 4)

			back, err := FromDenseInstances(inst)
			So(err, ShouldBeNil)
			v, _ := back.Value(1, "x")
			So(v, ShouldEqual, -1.0)
			v, _ = back.Value(2, "n")
			So(v, ShouldEqual, -1.0)
			v, _ = back.Value(1, "label")
			So(v, ShouldBeNil)

			n, err = FillNaN(inst, 0)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
		})
	})
}
