package nlu

import (
	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

// universityAliases maps canonical university names to their surface forms.
// Aliases are stored in normalized form (lowercase Turkish) and are matched
// longest-first so "marmara üniversitesi" wins over the bare "marmara".
var universityAliases = map[string][]string{
	"Marmara Üniversitesi":             {"marmara üniversitesi", "marmara"},
	"Boğaziçi Üniversitesi":            {"boğaziçi üniversitesi", "boğaziçi", "bogazici", "boun"},
	"İstanbul Teknik Üniversitesi":     {"istanbul teknik üniversitesi", "istanbul teknik", "itü", "itu"},
	"Orta Doğu Teknik Üniversitesi":    {"orta doğu teknik üniversitesi", "orta doğu teknik", "odtü", "odtu"},
	"İstanbul Üniversitesi":            {"istanbul üniversitesi"},
	"Ankara Üniversitesi":              {"ankara üniversitesi"},
	"Hacettepe Üniversitesi":           {"hacettepe üniversitesi", "hacettepe"},
	"Ege Üniversitesi":                 {"ege üniversitesi"},
	"Dokuz Eylül Üniversitesi":         {"dokuz eylül üniversitesi", "dokuz eylül", "dokuz eylul"},
	"Yıldız Teknik Üniversitesi":       {"yıldız teknik üniversitesi", "yıldız teknik", "ytü"},
	"Gazi Üniversitesi":                {"gazi üniversitesi"},
	"Koç Üniversitesi":                 {"koç üniversitesi", "koc üniversitesi"},
	"Sabancı Üniversitesi":             {"sabancı üniversitesi", "sabancı", "sabanci"},
	"İhsan Doğramacı Bilkent Üniversitesi": {"bilkent üniversitesi", "bilkent"},
	"Selçuk Üniversitesi":              {"selçuk üniversitesi", "selcuk üniversitesi"},
	"Atatürk Üniversitesi":             {"atatürk üniversitesi", "ataturk üniversitesi"},
}

// departmentAliases maps canonical department names to surface forms
var departmentAliases = map[string][]string{
	"Bilgisayar Mühendisliği":          {"bilgisayar mühendisliği", "bilgisayar mühendislik", "bilgisayar muhendisligi"},
	"Yazılım Mühendisliği":             {"yazılım mühendisliği", "yazilim muhendisligi"},
	"Elektrik-Elektronik Mühendisliği": {"elektrik elektronik mühendisliği", "elektrik elektronik", "elektronik mühendisliği", "elektrik mühendisliği"},
	"Makine Mühendisliği":              {"makine mühendisliği", "makina mühendisliği"},
	"Endüstri Mühendisliği":            {"endüstri mühendisliği", "endustri muhendisligi"},
	"İnşaat Mühendisliği":              {"inşaat mühendisliği", "insaat muhendisligi"},
	"Tıp":                              {"tıp fakültesi", "tıp"},
	"Diş Hekimliği":                    {"diş hekimliği", "dis hekimligi"},
	"Eczacılık":                        {"eczacılık", "eczacilik"},
	"Hemşirelik":                       {"hemşirelik", "hemsirelik"},
	"Hukuk":                            {"hukuk fakültesi", "hukuk"},
	"Psikoloji":                        {"psikoloji"},
	"İşletme":                          {"işletme", "isletme"},
	"İktisat":                          {"iktisat", "ekonomi"},
	"Mimarlık":                         {"mimarlık", "mimarlik"},
	"İngilizce Öğretmenliği":           {"ingilizce öğretmenliği", "ingilizce ogretmenligi"},
	"Sınıf Öğretmenliği":               {"sınıf öğretmenliği", "sinif ogretmenligi"},
	"Okul Öncesi Öğretmenliği":         {"okul öncesi öğretmenliği", "okul öncesi"},
}

// cityAliases covers the cities callers actually ask about
var cityAliases = map[string][]string{
	"İstanbul": {"istanbul"},
	"Ankara":   {"ankara"},
	"İzmir":    {"izmir"},
	"Bursa":    {"bursa"},
	"Antalya":  {"antalya"},
	"Konya":    {"konya"},
	"Eskişehir": {"eskişehir", "eskisehir"},
}

// scoreTypeVocab is the closed score-type vocabulary. Matched as whole
// words only; "say" inside "sayfa" must not fire.
var scoreTypeVocab = map[string][]string{
	"SAY": {"say", "sayısal", "sayisal"},
	"EA":  {"ea", "eşit ağırlık", "esit agirlik"},
	"SÖZ": {"söz", "sözel", "sozel"},
	"DİL": {"dil", "yabancı dil", "yabanci dil"},
	"TYT": {"tyt"},
	"AYT": {"ayt"},
}

// subjectNames lists exam subjects recognized by the subject-net extractor,
// in the alternation order used by its pattern.
var subjectNames = []string{
	"matematik", "geometri", "türkçe", "edebiyat", "fizik", "kimya",
	"biyoloji", "fen", "tarih", "coğrafya", "felsefe", "sosyal",
	"din", "ingilizce",
}

// keywordGroup is one weighted keyword set contributing to an intent score
type keywordGroup struct {
	Keywords []string
	Weight   float64
}

// intentOrder fixes the deterministic tie-break: when two intents score
// equally the one listed first wins.
var intentOrder = []dialogue.Intent{
	dialogue.IntentGreeting,
	dialogue.IntentFarewell,
	dialogue.IntentThanks,
	dialogue.IntentNetCalculation,
	dialogue.IntentScoreQuery,
	dialogue.IntentRankingQuery,
	dialogue.IntentQuotaQuery,
	dialogue.IntentScholarshipInfo,
	dialogue.IntentComparison,
	dialogue.IntentDepartmentInfo,
	dialogue.IntentUniversityInfo,
	dialogue.IntentPreferenceAdvice,
}

// intentPatterns is the weighted keyword table behind classification.
// Courtesy intents carry weight 2.0 so a bare greeting clears the
// clarification threshold on its own.
var intentPatterns = map[dialogue.Intent][]keywordGroup{
	dialogue.IntentGreeting: {
		{Keywords: []string{"merhaba", "selam", "günaydın", "iyi günler", "iyi akşamlar", "hey"}, Weight: 2.0},
	},
	dialogue.IntentFarewell: {
		{Keywords: []string{"hoşça kal", "hoşçakal", "görüşürüz", "iyi geceler", "güle güle", "bay bay"}, Weight: 2.0},
	},
	dialogue.IntentThanks: {
		{Keywords: []string{"teşekkür", "teşekkürler", "sağ ol", "sağol", "eyvallah"}, Weight: 2.0},
	},
	dialogue.IntentNetCalculation: {
		{Keywords: []string{"kaç net", "net gerekir", "net lazım", "net hesapla", "netle girilir"}, Weight: 1.5},
		{Keywords: []string{"net"}, Weight: 0.8},
	},
	dialogue.IntentScoreQuery: {
		{Keywords: []string{"taban puan", "taban puanı", "kaç puan", "puan gerekir", "puanla girilir"}, Weight: 1.5},
		{Keywords: []string{"puan"}, Weight: 0.8},
	},
	dialogue.IntentRankingQuery: {
		{Keywords: []string{"başarı sırası", "kaçıncı sıra", "sıralama gerekir", "kaç bininci"}, Weight: 1.5},
		{Keywords: []string{"sıralama", "sıralamayla"}, Weight: 0.8},
	},
	dialogue.IntentQuotaQuery: {
		{Keywords: []string{"kontenjan", "kaç kişi alıyor", "kaç öğrenci alıyor"}, Weight: 1.5},
	},
	dialogue.IntentScholarshipInfo: {
		{Keywords: []string{"burs", "burslu", "tam burslu", "%50 burslu", "ücretsiz okuma"}, Weight: 1.5},
	},
	dialogue.IntentComparison: {
		{Keywords: []string{"karşılaştır", "hangisi daha iyi", "mı yoksa", "arasındaki fark"}, Weight: 1.5},
	},
	dialogue.IntentDepartmentInfo: {
		{Keywords: []string{"bölüm hakkında", "bölümü nasıl", "dersleri neler", "iş imkanları", "mezunları ne yapar"}, Weight: 1.2},
		{Keywords: []string{"bölüm", "bölümü"}, Weight: 0.5},
	},
	dialogue.IntentUniversityInfo: {
		{Keywords: []string{"üniversite hakkında", "nasıl bir üniversite", "kampüs", "yurt imkanları"}, Weight: 1.2},
	},
	dialogue.IntentPreferenceAdvice: {
		{Keywords: []string{"tercih listesi", "hangi bölümü seçmeliyim", "ne yapmalıyım", "tavsiye"}, Weight: 1.2},
		{Keywords: []string{"tercih", "öneri"}, Weight: 0.8},
	},
}

// questionWords flag interrogative utterances for the classifier fallback
var questionWords = map[string]bool{
	"ne": true, "neden": true, "niye": true, "nasıl": true, "kaç": true,
	"hangi": true, "hangisi": true, "nerede": true, "nereden": true,
	"kim": true, "mi": true, "mı": true, "mu": true, "mü": true,
	"midir": true, "mıdır": true,
}

// confusionMarkers flag utterances where the user signals being lost
var confusionMarkers = []string{
	"anlamadım", "anlamıyorum", "bilmiyorum", "nasıl yani",
	"ne demek", "kafam karıştı", "emin değilim", "yardım",
}

// requiredEntities lists the entity types an intent needs before the
// engine can answer instead of asking back.
var requiredEntities = map[dialogue.Intent][]dialogue.EntityType{
	dialogue.IntentScoreQuery:      {dialogue.EntityUniversity, dialogue.EntityDepartment},
	dialogue.IntentNetCalculation:  {dialogue.EntityUniversity, dialogue.EntityDepartment},
	dialogue.IntentQuotaQuery:      {dialogue.EntityUniversity, dialogue.EntityDepartment},
	dialogue.IntentRankingQuery:    {dialogue.EntityUniversity, dialogue.EntityDepartment},
	dialogue.IntentDepartmentInfo:  {dialogue.EntityDepartment},
	dialogue.IntentUniversityInfo:  {dialogue.EntityUniversity},
	dialogue.IntentComparison:      {dialogue.EntityUniversity},
	dialogue.IntentScholarshipInfo: {dialogue.EntityUniversity},
}

// RequiredEntities returns the entity types the given intent must have
// accumulated before it can be answered. Intents absent from the table
// need nothing.
func RequiredEntities(intent dialogue.Intent) []dialogue.EntityType {
	return requiredEntities[intent]
}

type clarificationKey struct {
	Entity dialogue.EntityType
	Intent dialogue.Intent
}

// clarificationQuestions maps (missing entity, intent) to the Turkish
// question asked back to the user.
var clarificationQuestions = map[clarificationKey]string{
	{dialogue.EntityUniversity, dialogue.IntentScoreQuery}:      "Hangi üniversitenin taban puanını öğrenmek istiyorsunuz?",
	{dialogue.EntityDepartment, dialogue.IntentScoreQuery}:      "Hangi bölümün taban puanını merak ediyorsunuz?",
	{dialogue.EntityUniversity, dialogue.IntentNetCalculation}:  "Hangi üniversite için net hesaplayalım?",
	{dialogue.EntityDepartment, dialogue.IntentNetCalculation}:  "Hangi bölüm için net hesaplayalım?",
	{dialogue.EntityUniversity, dialogue.IntentQuotaQuery}:      "Hangi üniversitenin kontenjanına bakalım?",
	{dialogue.EntityDepartment, dialogue.IntentQuotaQuery}:      "Hangi bölümün kontenjanına bakalım?",
	{dialogue.EntityUniversity, dialogue.IntentRankingQuery}:    "Hangi üniversitenin başarı sıralamasını öğrenmek istiyorsunuz?",
	{dialogue.EntityDepartment, dialogue.IntentRankingQuery}:    "Hangi bölümün başarı sıralamasını öğrenmek istiyorsunuz?",
	{dialogue.EntityDepartment, dialogue.IntentDepartmentInfo}:  "Hangi bölüm hakkında bilgi almak istiyorsunuz?",
	{dialogue.EntityUniversity, dialogue.IntentUniversityInfo}:  "Hangi üniversite hakkında bilgi almak istiyorsunuz?",
	{dialogue.EntityUniversity, dialogue.IntentComparison}:      "Hangi üniversiteleri karşılaştırmak istiyorsunuz?",
	{dialogue.EntityUniversity, dialogue.IntentScholarshipInfo}: "Hangi üniversitenin burs imkanlarını merak ediyorsunuz?",
}

// genericClarifications cover missing entity types with no intent-specific
// wording.
var genericClarifications = map[dialogue.EntityType]string{
	dialogue.EntityUniversity: "Hangi üniversiteyi kastediyorsunuz?",
	dialogue.EntityDepartment: "Hangi bölümü kastediyorsunuz?",
	dialogue.EntityScoreType:  "Hangi puan türüyle ilgileniyorsunuz? (SAY, EA, SÖZ, DİL)",
}

// ClarificationQuestion returns the question to ask when entity is missing
// for intent, falling back to a generic per-entity wording.
func ClarificationQuestion(entity dialogue.EntityType, intent dialogue.Intent) string {
	if q, ok := clarificationQuestions[clarificationKey{entity, intent}]; ok {
		return q
	}
	if q, ok := genericClarifications[entity]; ok {
		return q
	}
	return "Biraz daha detay verebilir misiniz?"
}
