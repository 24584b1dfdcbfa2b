package domain

// Club represents one UKM (student activity unit) record in the catalog.
// Name is the primary key; the remaining fields are free-text attributes
// copied from the spreadsheet the catalog was imported from.
type Club struct {
	Name       string `json:"nama_ukm"`
	Category   string `json:"kategori"`
	Activity   string `json:"jenis_kegiatan"`
	Schedule   string `json:"jadwal_latihan"`
	Desc       string `json:"deskripsi"`
	CoreValues string `json:"nilai_utama"`
}
