package extraction

// overrideRatio is how far above the hinted total a scanned amount must be,
// relative to the hint, before it replaces the hint.
const overrideRatio = 0.5

// ReconcileTotal chooses the final total from the hinted total and the
// largest amount scanned from the text. base is the hinted total as given.
//
// A positive hint is trusted unless the text contains an amount exceeding it
// by more than half the hint (a tip-inclusive total the hint missed, for
// instance). Without a hint the scanned maximum is used.
func ReconcileTotal(hinted, scannedMax float64) (total, base float64) {
	if hinted < 0 {
		hinted = 0
	}
	if scannedMax < 0 {
		scannedMax = 0
	}
	base = round2(hinted)

	total = scannedMax
	if hinted > 0 {
		total = hinted
	}
	switch {
	case scannedMax > hinted && hinted > 0 && scannedMax-hinted > overrideRatio*hinted:
		total = scannedMax
	case scannedMax > hinted && hinted == 0:
		total = scannedMax
	}
	return round2(total), base
}
