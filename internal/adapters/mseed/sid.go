package mseed

import "strings"

// sid2 builds the FDSN source identifier for a version 2 record from its
// network, station, location, and channel header fields. A three
// character channel code expands into band, source, and position codes.
func sid2(head []byte) string {
	net := trimField(head[ms2OffNetwork : ms2OffNetwork+2])
	sta := trimField(head[ms2OffStation : ms2OffStation+5])
	loc := trimField(head[ms2OffLocation : ms2OffLocation+2])
	cha := trimField(head[ms2OffChannel : ms2OffChannel+3])

	if len(cha) == 3 && !strings.Contains(cha, "_") {
		cha = string(cha[0]) + "_" + string(cha[1]) + "_" + string(cha[2])
	}
	return "FDSN:" + net + "_" + sta + "_" + loc + "_" + cha
}

// nslc splits an FDSN source identifier back into network, station,
// location, and channel codes for version 2 output. Identifiers that do
// not follow the FDSN:NET_STA_LOC_B_S_P form come back best-effort.
func nslc(sid string) (net, sta, loc, cha string) {
	id := strings.TrimPrefix(sid, "FDSN:")
	parts := strings.Split(id, "_")
	if len(parts) < 3 {
		return "", id, "", ""
	}
	net, sta, loc = parts[0], parts[1], parts[2]
	cha = strings.Join(parts[3:], "")
	return net, sta, loc, cha
}

func trimField(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}
