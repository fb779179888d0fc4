package cmd

type flagsT struct {
	setup struct {
		OCRPackage string
		Manifest   string
	}
	statement struct {
		Dest string
	}
	recon struct {
		DateWindowDays  int
		AmountTolerance float64
		Output          string
	}
}

var params flagsT
