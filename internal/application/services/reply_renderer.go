package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tercihrehberi/tercihbot-go/internal/domain/entities/dialogue"
)

// renderReply turns a dialogue result into the Turkish reply shown to the
// user. Data-backed intents consult the score service; when the engine
// still needs information the clarification questions become the reply.
func (s *ChatService) renderReply(ctx context.Context, result *dialogue.Result) string {
	if result.ClarificationNeeded {
		if len(result.FollowUpQuestions) > 0 {
			return result.FollowUpQuestions[0]
		}
		return "Sizi tam anlayamadım. Üniversite ve bölüm adıyla birlikte sorarsanız yardımcı olabilirim."
	}

	university := stringEntity(result.Entities, dialogue.EntityUniversity)
	department := stringEntity(result.Entities, dialogue.EntityDepartment)
	scoreType := stringEntity(result.Entities, dialogue.EntityScoreType)

	switch result.Intent {
	case dialogue.IntentGreeting:
		return "Merhaba! Üniversite ve bölüm tercihleri konusunda yardımcı olabilirim. " +
			"Taban puanı, başarı sıralaması, kontenjan ve net hesaplama sorularınızı yanıtlayabilirim."

	case dialogue.IntentFarewell:
		return "Görüşmek üzere! Tercih döneminde bol şans dilerim."

	case dialogue.IntentThanks:
		return "Rica ederim! Başka sorunuz olursa yazmanız yeterli."

	case dialogue.IntentScoreQuery:
		return s.renderScoreReply(ctx, university, department, scoreType)

	case dialogue.IntentNetCalculation:
		return s.renderNetReply(ctx, result, university, department, scoreType)

	case dialogue.IntentRankingQuery:
		return s.renderRankingReply(ctx, university, department, scoreType)

	case dialogue.IntentQuotaQuery:
		return s.renderQuotaReply(ctx, university, department, scoreType)

	case dialogue.IntentDepartmentInfo:
		return fmt.Sprintf("%s, farklı üniversitelerde farklı taban puanlarıyla öğrenci alan bir bölümdür. "+
			"Bir üniversite adı verirseniz güncel taban puanı ve kontenjan bilgisini getirebilirim.", department)

	case dialogue.IntentUniversityInfo:
		return fmt.Sprintf("%s hakkında bölüm bazında bilgi verebilirim. "+
			"Bir bölüm adı yazarsanız taban puanı, sıralama ve kontenjan bilgilerini getiririm.", university)

	case dialogue.IntentScholarshipInfo:
		return fmt.Sprintf("%s burs imkanları yıldan yıla değişebiliyor. "+
			"ÖSYM kılavuzunda tam burslu ve kısmi burslu kontenjanlar ayrı satırlarda listelenir; "+
			"güncel koşullar için üniversitenin resmi sayfasına bakmanızı öneririm.", university)

	case dialogue.IntentComparison:
		return s.renderComparisonReply(ctx, result, department)

	case dialogue.IntentPreferenceAdvice:
		return "Tercih listesi hazırlarken puanınıza göre birkaç güvenli, birkaç denk ve birkaç iddialı " +
			"tercih sıralamanızı öneririm. Hedeflediğiniz bölümleri yazarsanız taban puanlarıyla birlikte değerlendirebiliriz."

	default:
		if len(result.FollowUpQuestions) > 0 {
			return result.FollowUpQuestions[0]
		}
		return "Sorunuzu biraz daha açar mısınız? Üniversite ve bölüm adıyla sorarsanız daha net yardımcı olabilirim."
	}
}

func (s *ChatService) renderScoreReply(ctx context.Context, university, department, scoreType string) string {
	record, err := s.score.LookupLatest(ctx, university, department, scoreType)
	if err != nil {
		s.logger.Chat().Error("Score lookup failed", slog.Any("error", err))
		return "Şu anda puan verisine ulaşamıyorum, lütfen biraz sonra tekrar deneyin."
	}
	if record == nil {
		return fmt.Sprintf("Üzgünüm, %s %s için elimde taban puanı verisi yok.", university, department)
	}

	return fmt.Sprintf("%s %s bölümü %d yılında %s puan türünde en düşük %s puanla öğrenci aldı. "+
		"Başarı sıralaması: %d, kontenjan: %d.",
		record.University, record.Department, record.Year, record.ScoreType,
		FormatScore(record.MinScore), record.MinRank, record.Quota)
}

func (s *ChatService) renderNetReply(ctx context.Context, result *dialogue.Result, university, department, scoreType string) string {
	record, err := s.score.LookupLatest(ctx, university, department, scoreType)
	if err != nil {
		s.logger.Chat().Error("Score lookup failed", slog.Any("error", err))
		return "Şu anda puan verisine ulaşamıyorum, lütfen biraz sonra tekrar deneyin."
	}
	if record == nil {
		return fmt.Sprintf("Üzgünüm, %s %s için net hesabı yapacak veri bulamadım.", university, department)
	}

	requiredNets := s.score.EstimateRequiredNets(record.MinScore)
	reply := fmt.Sprintf("%s %s için %d taban puanı %s (%s). "+
		"Bu puana ulaşmak için yaklaşık %.0f net gerekir.",
		record.University, record.Department, record.Year,
		FormatScore(record.MinScore), record.ScoreType, requiredNets)

	if nets, ok := result.Entities[subjectNetsKey].(map[string]dialogue.NetPair); ok && len(nets) > 0 {
		total := s.score.TotalNet(nets)
		estimated := s.score.EstimateScore(total)
		verdict := "bu hedefin altında kalıyor"
		if estimated >= record.MinScore {
			verdict = "bu hedef için yeterli görünüyor"
		}
		reply += fmt.Sprintf(" Yazdığınız netlerin toplamı %.2f, tahmini puanınız %s ve %s.",
			total, FormatScore(estimated), verdict)
	}
	return reply
}

func (s *ChatService) renderRankingReply(ctx context.Context, university, department, scoreType string) string {
	record, err := s.score.LookupLatest(ctx, university, department, scoreType)
	if err != nil {
		s.logger.Chat().Error("Score lookup failed", slog.Any("error", err))
		return "Şu anda sıralama verisine ulaşamıyorum, lütfen biraz sonra tekrar deneyin."
	}
	if record == nil || record.MinRank == 0 {
		return fmt.Sprintf("Üzgünüm, %s %s için sıralama verisi bulamadım.", university, department)
	}

	return fmt.Sprintf("%s %s bölümüne %d yılında en son yerleşen adayın başarı sıralaması yaklaşık %d idi (%s).",
		record.University, record.Department, record.Year, record.MinRank, record.ScoreType)
}

func (s *ChatService) renderQuotaReply(ctx context.Context, university, department, scoreType string) string {
	record, err := s.score.LookupLatest(ctx, university, department, scoreType)
	if err != nil {
		s.logger.Chat().Error("Score lookup failed", slog.Any("error", err))
		return "Şu anda kontenjan verisine ulaşamıyorum, lütfen biraz sonra tekrar deneyin."
	}
	if record == nil || record.Quota == 0 {
		return fmt.Sprintf("Üzgünüm, %s %s için kontenjan verisi bulamadım.", university, department)
	}

	return fmt.Sprintf("%s %s bölümünün %d yılı kontenjanı %d kişiydi.",
		record.University, record.Department, record.Year, record.Quota)
}

func (s *ChatService) renderComparisonReply(ctx context.Context, result *dialogue.Result, department string) string {
	university := stringEntity(result.Entities, dialogue.EntityUniversity)
	if department == "" {
		return "Karşılaştırmak için bir bölüm adı da yazarsanız üniversitelerin taban puanlarını yan yana getirebilirim."
	}

	record, err := s.score.LookupLatest(ctx, university, department, "")
	if err != nil || record == nil {
		return fmt.Sprintf("Karşılaştırma için %s verilerine şu anda ulaşamadım. "+
			"İki üniversite adını bölümle birlikte yazarsanız tek tek sorgulayabilirim.", department)
	}

	return fmt.Sprintf("%s %s: %d yılında %s taban puanı. "+
		"Karşılaştırmak istediğiniz diğer üniversiteyi yazarsanız onun verisini de getiririm.",
		record.University, record.Department, record.Year, FormatScore(record.MinScore))
}

func stringEntity(entities map[string]any, t dialogue.EntityType) string {
	if v, ok := entities[string(t)].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
