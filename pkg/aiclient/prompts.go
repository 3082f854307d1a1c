package aiclient

import (
	"fmt"
	"strings"
	"time"
)

const initialSystemInstruction = `당신은 30년 경력의 전문 사주명리학 상담사입니다.
사용자의 생년월일시를 바탕으로 사주팔자를 분석하고,
과학적이면서도 공감 가능한 조언을 제공합니다.

분석 원칙:
1. 음양오행 이론에 기반한 체계적 분석
2. 구체적이고 실용적인 조언 제공
3. 긍정적이면서도 현실적인 톤 유지
4. 과도한 미신적 표현 지양
5. 사용자의 자유의지와 노력 강조`

const dailySystemInstruction = `당신은 사용자의 사주를 기반으로 일일 운세를 제공하는 전문가입니다.
이미 분석된 사용자의 기본 사주 정보를 참고하여,
오늘 하루의 운세를 구체적이고 실용적으로 안내합니다.

작성 원칙:
1. 오늘 날짜와 요일을 명시
2. 당일의 천간지지와 사용자 사주의 상호작용 분석
3. 시간대별 운세 (오전/오후/저녁)
4. 실천 가능한 구체적 행동 제안
5. 너무 불길한 표현은 완화하되 솔직하게 전달`

func SystemInstruction(t ReportType) string {
	if t == ReportDaily {
		return dailySystemInstruction
	}
	return initialSystemInstruction
}

// BuildPrompt renders the user prompt for the given report variant.
func BuildPrompt(opts Options) string {
	if opts.Type == ReportDaily {
		return buildDailyPrompt(opts)
	}
	return buildInitialPrompt(opts)
}

func genderKorean(gender string) string {
	if gender == "male" {
		return "남성"
	}
	return "여성"
}

func buildInitialPrompt(opts Options) string {
	birthTime := opts.BirthTime
	if birthTime == "" {
		birthTime = "알 수 없음"
	}

	return strings.TrimSpace(fmt.Sprintf(`
# 사주 기본 정보
- 이름: %s
- 생년월일: %s (양력)
- 출생 시간: %s
- 성별: %s

# 분석 요청
위 정보를 바탕으로 종합 사주 분석을 제공해주세요:

## 1. 기본 사주 구조
- 천간(天干)과 지지(地支) 배치, 오행(五行) 균형 분석

## 2. 성격 및 기질
- 타고난 성격 특성, 장점과 단점, 대인관계 스타일

## 3. 운세 분야별 분석
사업/직업운(Career), 재물운(Wealth), 건강운(Health), 애정/인간관계운(Relationship)
각 분야를 1-100점으로 평가하고 구체적 조언을 150자 내외로 제공해주세요.

## 4. 행운 요소
- 길(吉)한 방위, 행운의 색상, 행운의 숫자, 궁합이 좋은 띠

## 5. 주의 및 경계 사항
- 피해야 할 행동 3가지, 조심해야 할 시기

## 6. 종합 조언
전체적인 인생 조언을 200자 내외로 요약해주세요.

---
중요: 응답은 반드시 한국어로 작성하고, 위 형식을 정확히 따라주세요.
응답 마지막에 다음 JSON 형식도 포함해주세요:

`+"```json"+`
{
  "overall_score": 75,
  "fortune_aspects": {
    "career": { "score": 80, "advice": "조언 내용" },
    "wealth": { "score": 70, "advice": "조언 내용" },
    "health": { "score": 75, "advice": "조언 내용" },
    "relationship": { "score": 80, "advice": "조언 내용" }
  },
  "lucky_elements": ["동쪽", "파란색", "3", "소띠"],
  "warnings": ["경고1", "경고2", "경고3"]
}
`+"```", opts.Name, opts.BirthDate, birthTime, genderKorean(opts.Gender)))
}

var koreanWeekdays = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

func buildDailyPrompt(opts Options) string {
	dayOfWeek := ""
	if t, err := time.Parse("2006-01-02", opts.Today); err == nil {
		dayOfWeek = koreanWeekdays[t.Weekday()]
	}

	var previous string
	if opts.PreviousAnalysis != "" {
		previous = fmt.Sprintf("\n# 기본 사주 분석 (참고용)\n%s\n", opts.PreviousAnalysis)
	}

	return strings.TrimSpace(fmt.Sprintf(`
# 사용자 기본 정보
- 이름: %s
- 생년월일: %s
- 성별: %s
- 오늘 날짜: %s (%s)
%s
# 일일 운세 작성 요청

오늘의 운세를 다음 형식으로 작성해주세요:

## 오늘의 전체운
오늘 하루의 전반적인 운세를 100-150자로 요약하고,
오늘의 천간지지와 사용자 사주의 조화를 언급하세요.

## 시간대별 운세
오전(06:00-12:00), 오후(12:00-18:00), 저녁(18:00-24:00) 각각
1-100점과 80자 내외의 조언을 제공해주세요.

## 오늘의 주요 운세
업무/학업운, 금전운, 대인관계운, 건강운을 각 1-100점과 한 줄 조언으로 평가해주세요.

## 오늘의 실천 사항
오늘 하루 실천하면 좋을 구체적인 행동 3가지를 제안해주세요.

## 오늘 주의할 점
오늘 특별히 조심해야 할 사항을 간단히 안내해주세요.

## 행운 키워드
행운의 색상, 방향, 시간대, 긍정 키워드를 제시해주세요.

---
중요: 응답은 한국어로 작성하고, 위 형식을 정확히 따라주세요.
응답 마지막에 다음 JSON도 포함해주세요:

`+"```json"+`
{
  "date": "%s",
  "overall_score": 75,
  "fortune_aspects": {
    "career": { "score": 80, "advice": "조언" },
    "wealth": { "score": 70, "advice": "조언" },
    "health": { "score": 85, "advice": "조언" },
    "relationship": { "score": 75, "advice": "조언" }
  },
  "time_slots": {
    "morning": { "score": 80, "advice": "조언" },
    "afternoon": { "score": 70, "advice": "조언" },
    "evening": { "score": 75, "advice": "조언" }
  },
  "actions": ["행동1", "행동2", "행동3"],
  "lucky_elements": ["파란색", "동쪽", "오전 9-11시", "소통"],
  "warnings": ["주의1"]
}
`+"```", opts.Name, opts.BirthDate, genderKorean(opts.Gender), opts.Today, dayOfWeek, previous, opts.Today))
}
