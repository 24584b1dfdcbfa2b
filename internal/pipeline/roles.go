package pipeline

import (
	"github.com/ukm-labs/advisor/internal/catalog"
)

// Canonical role names.
const (
	RoleStudent  = "User_Student"
	RoleAnalyzer = "ProfileAnalyzer"
	RoleSearcher = "UKMDataSearcher"
	RoleScorer   = "ScoringAgent"
	RoleWriter   = "RecommendationWriter"
)

// TerminateMarker ends a session; FinalAnswerMarker fences the writer's
// closing JSON payload.
const (
	TerminateMarker   = "TERMINATE"
	FinalAnswerMarker = "json_final"
)

// DefaultMarkers returns the canonical control markers. The tool sentinels
// come from the catalog package so the dispatcher and the search tool can
// never disagree about them.
func DefaultMarkers() Markers {
	return Markers{
		Terminate:   TerminateMarker,
		FinalAnswer: FinalAnswerMarker,
		EmptyResult: catalog.EmptyMarker,
		ToolResult:  catalog.ResultMarker,
	}
}

const analyzerInstructions = `Tugas: Kamu adalah penerjemah minat user menjadi KATA KUNCI DATABASE UKM.

PENTING: Jangan gunakan kata umum jika user spesifik. Gunakan tabel di bawah ini sebagai acuan mutlak.

KAMUS PEMETAAN (Input User -> Output Keyword):

[OLAHRAGA]
- Basket, NBA, Dribble, Ring -> "Basket"
- Bola, Sepakbola, Futsal, Kiper -> "Futsal"
- Lari, Fisik, Gym, Sport, Bulu Tangkis, Tennis, Padel -> "Olahraga"

[SENI & MUSIK]
- Band, Gitar, Drum, Bass, Ngeband -> "Band, Musik"
- Nyanyi, Vokal, Choir, Suara -> "Paduan Suara"
- Nari, Dance, Tradisional, Gerak -> "Tari"
- Foto, Kamera, Video, Editing, Gambar, Desain -> "Fotografi"
- Akting, Drama, Peran, Panggung, Film -> "Teater"

[TEKNOLOGI & ILMIAH]
- Koding, Coding, Programmer, Web, App, IT -> "Coding, Teknologi"
- Robot, Elektro, Rakit, Mekanik -> "Robotika"

[SOSIAL & LAINNYA]
- Gunung, Hiking, Camping, Hutan, Alam, Outdoor -> "Mapala, Alam"
- Inggris, Public Speaking, Ngomong, Debat, Pidato -> "Debat"
- Bisnis, Jualan, Usaha, Dagang, Startup, Saham -> "Entrepreneur"
- Menulis, Nulis, Berita, Artikel, Jurnalistik, Baca -> "Pers"
- Medis, P3K, Kesehatan, Dokter, Palang Merah -> "KSR"
- Islam, Ngaji, Dakwah, Rohis -> "Kerohanian Islam"

ATURAN KERAS:
1. JANGAN menambah keyword yang tidak disebut user.
2. Jika user HANYA bicara musik, JANGAN output Coding/Teknologi.
3. Fokus pada kata benda aktivitas yang disebut user.
4. Jika minat user TIDAK ADA di kamus, JANGAN DIPAKSAKAN ke kategori lain.

CONTOH BENAR:
User: "Suka musik" -> Band, Musik
User: "Suka naik gunung" -> Mapala

Output HANYA kata kunci dipisah koma.`

const scorerInstructions = `Kamu adalah Data Filter.

Tugas:
1. Dari "DATABASE_RESULT", pilih 2-3 UKM terbaik.
2. PENTING: Jika keyword user mencakup BERBEDA KATEGORI (Misal: Teknologi DAN Seni), JANGAN pilih Teknologi semua. Ambil 1 Teknologi dan 1 Seni agar seimbang.
3. Siapkan data alasan kasar.

Output JSON Sederhana (Raw Data):
` + "```json" + `
{
    "selected_data": [
        {
            "name": "Nama UKM",
            "schedule": "Jadwal",
            "raw_match": "Alasan kasar (cocok keyword apa)"
        }
    ]
}
` + "```" + `
JANGAN PAKAI FORMAT json_final. JANGAN TERMINATE.`

const writerInstructions = `Kamu adalah Seorang Penulis Yang Handal dan Selalu Menulis kata TERMINATE di setiap akhiran jawabanmu.

Tugas:
1. Ambil data mentah.
2. Buat JSON Final untuk UI.

Untuk "long_reason":
- Gunakan bahasa yang asik dan mengajak.
- JANGAN meniru contoh secara buta. Sesuaikan dengan topik UKM-nya.
- Jika UKM Musik, bahas musik. Jika UKM Bola, bahas bola.

FORMAT WAJIB (Sampai ke TERMINATE):
` + "```json_final" + `
{
    "recommendations": [
        {
            "name": "...",
            "schedule": "...",
            "short_reason": "Headline singkat",
            "long_reason": "Paragraf persuasif yang relevan dengan UKM tersebut..."
        }
    ]
}
` + "```" + `
TERMINATE`

// DefaultConfig returns the canonical five-role pipeline: the student
// initiator, a keyword analyzer, the catalog searcher (interceptor bound to
// search), a scoring filter, and the recommendation writer.
func DefaultConfig(search InterceptFunc, maxRounds int) Config {
	if maxRounds <= 0 {
		maxRounds = 8
	}
	return Config{
		MaxRounds: maxRounds,
		Markers:   DefaultMarkers(),
		Roles: []Role{
			{Name: RoleStudent, Kind: RoleGenerative, Instructions: "Student."},
			{Name: RoleAnalyzer, Kind: RoleGenerative, Instructions: analyzerInstructions},
			{Name: RoleSearcher, Kind: RoleInterceptor, Intercept: search},
			{Name: RoleScorer, Kind: RoleGenerative, Instructions: scorerInstructions},
			{Name: RoleWriter, Kind: RoleGenerative, Instructions: writerInstructions},
		},
	}
}
