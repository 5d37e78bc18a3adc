package detector

// origins holds the full-geometry placement table of one detector: the
// (y, x) output coordinates of each logical module's top-left pixel. The
// values encode the physical mounting of the modules, including the
// spacing between neighboring tiles, and are only consulted when full
// geometry is requested.
type origins struct {
	y []int
	x []int
}

var moduleOrigins = map[string]origins{
	"JF01T03V01": {
		y: []int{0, 550, 1100},
		x: []int{0, 0, 0},
	},

	"JF02T01V02": {
		y: []int{0},
		x: []int{0},
	},

	// Single-row detector: modules run along the column axis.
	"JF02T09V01": {
		y: []int{0, 0, 0, 0, 0, 0, 0, 0, 0},
		x: []int{0, 1038, 2076, 3114, 4152, 5190, 6228, 7266, 8304},
	},

	"JF02T09V02": {
		y: []int{0, 550, 1100, 1650, 2200, 2750, 3300, 3850, 4400},
		x: []int{0, 0, 0, 0, 0, 0, 0, 0, 0},
	},

	"JF03T01V01": {
		y: []int{0},
		x: []int{0},
	},

	"JF04T01V01": {
		y: []int{0},
		x: []int{0},
	},

	// Stripsel detectors: origins are in remapped output coordinates.
	"JF05T01V01": {
		y: []int{0},
		x: []int{0},
	},

	"JF06T32V01": {
		y: []int{
			68, 0, 618, 618,
			550, 550, 1168, 1168,
			1100, 1100, 1718, 1718,
			1650, 1650, 2268, 2268,
			2200, 2200, 2818, 2818,
			2750, 2750, 3368, 3368,
			3300, 3300, 3918, 3918,
			3850, 3850, 4468, 4400,
		},
		x: []int{
			972, 2011, 0, 1039,
			2078, 3117, 0, 1039,
			2078, 3117, 0, 1039,
			2078, 3117, 66, 1106,
			2145, 3184, 66, 1106,
			2145, 3184, 66, 1106,
			2145, 3184, 66, 1106,
			2145, 3184, 1106, 2145,
		},
	},

	"JF07T32V01": {
		y: []int{
			0, 0, 68, 68,
			550, 550, 618, 618,
			1100, 1100, 1168, 1168,
			1650, 1650, 1718, 1718,
			2200, 2200, 2268, 2268,
			2750, 2750, 2818, 2818,
			3300, 3300, 3368, 3368,
			3850, 3850, 3918, 3918,
		},
		x: []int{
			68, 1107, 2146, 3185,
			68, 1107, 2146, 3185,
			68, 1107, 2146, 3185,
			68, 1107, 2146, 3185,
			0, 1039, 2078, 3117,
			0, 1039, 2078, 3117,
			0, 1039, 2078, 3117,
			0, 1039, 2078, 3117,
		},
	},

	"JF11T04V01": {
		y: []int{0, 122, 244, 366},
		x: []int{0, 0, 0, 0},
	},
}
