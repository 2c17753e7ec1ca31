package ingest

// curatedSeed is one entry of the default feed catalogue.
type curatedSeed struct {
	URL         string
	Title       string
	Category    string
	CountryCode string
}

// curatedFeeds is the default catalogue registered into an empty store.
// Seeding only registers URLs; titles and metadata are refreshed from the
// feeds themselves on the first successful poll.
var curatedFeeds = []curatedSeed{
	{URL: "https://academic.oup.com/rss/site_5009/0.xml", Title: "American Journal of Clinical Nutrition", Category: "Nutrition & Diet", CountryCode: "US"},
	{URL: "https://www.frontiersin.org/journals/nutrition/rss", Title: "Frontiers in Nutrition", Category: "Nutrition & Diet", CountryCode: "GLOBAL"},
	{URL: "https://bmcnutr.biomedcentral.com/articles/rss.xml", Title: "BMC Nutrition", Category: "Nutrition & Diet", CountryCode: "GLOBAL"},
	{URL: "https://www.jneb.org/current.rss", Title: "Journal of Nutrition Education & Behavior", Category: "Nutrition & Diet", CountryCode: "US"},
	{URL: "https://www.sciencedaily.com/rss/health_medicine/nutrition.xml", Title: "ScienceDaily Nutrition News", Category: "Nutrition & Diet", CountryCode: "US"},
	{URL: "https://www.nejm.org/action/showFeed?type=etoc&feed=rss", Title: "New England Journal of Medicine", Category: "Medical Research", CountryCode: "US"},
	{URL: "https://jamanetwork.com/rss/site_7/0.xml", Title: "JAMA", Category: "Medical Research", CountryCode: "US"},
	{URL: "https://www.thelancet.com/rssfeed/lancet_current.xml", Title: "The Lancet", Category: "Medical Research", CountryCode: "UK"},
	{URL: "https://www.nature.com/nm/current_issue/rss", Title: "Nature Medicine", Category: "Medical Research", CountryCode: "GLOBAL"},
	{URL: "https://www.nih.gov/news-events/news-releases/feed", Title: "NIH Research News", Category: "Medical Research", CountryCode: "US"},
	{URL: "https://ajph.aphapublications.org/action/showFeed?type=etoc&feed=rss", Title: "American Journal of Public Health", Category: "Public Health", CountryCode: "US"},
	{URL: "https://www.cdc.gov/mmwr/rss/rss.xml", Title: "CDC MMWR", Category: "Public Health", CountryCode: "US"},
	{URL: "https://www.who.int/feeds/entity/mediacentre/news/en/rss.xml", Title: "WHO News", Category: "Public Health", CountryCode: "GLOBAL"},
	{URL: "https://www.cambridge.org/core/rss/journals/public-health-nutrition", Title: "Public Health Nutrition", Category: "Public Health", CountryCode: "GLOBAL"},
	{URL: "https://www.sciencedaily.com/rss/health_medicine/public_health.xml", Title: "ScienceDaily Public Health", Category: "Public Health", CountryCode: "US"},
	{URL: "https://clinicaltrials.gov/ct2/results/rss.xml", Title: "ClinicalTrials.gov New Studies", Category: "Clinical Studies", CountryCode: "US"},
	{URL: "https://ascopubs.org/action/showFeed?type=etoc&feed=rss&jc=jco", Title: "Journal of Clinical Oncology", Category: "Clinical Studies", CountryCode: "US"},
	{URL: "https://www.ahajournals.org/action/showFeed?type=etoc&feed=rss&jc=circulationaha", Title: "Circulation", Category: "Clinical Studies", CountryCode: "US"},
	{URL: "https://ajp.psychiatryonline.org/rss/current.xml", Title: "American Journal of Psychiatry", Category: "Mental Health", CountryCode: "US"},
	{URL: "https://www.sciencedaily.com/rss/health_medicine/clinical_trials.xml", Title: "ScienceDaily Clinical Trials", Category: "Clinical Studies", CountryCode: "US"},
	{URL: "https://www.cdc.gov/pcd/rss/PCDNews.xml", Title: "CDC Preventing Chronic Disease", Category: "Disease Prevention", CountryCode: "US"},
	{URL: "https://www.thelancet.com/rssfeed/lancetinfectiousdiseases_current.xml", Title: "Lancet Infectious Diseases", Category: "Disease Prevention", CountryCode: "UK"},
	{URL: "https://www.nature.com/mi/current_issue/rss", Title: "Nature Microbiology & Immunology", Category: "Disease Prevention", CountryCode: "GLOBAL"},
	{URL: "https://www.sciencedaily.com/rss/health_medicine/diseases_and_conditions.xml", Title: "ScienceDaily Diseases & Conditions", Category: "Disease Prevention", CountryCode: "US"},
	{URL: "https://www.frontiersin.org/journals/psychology/rss", Title: "Frontiers in Psychology", Category: "Mental Health", CountryCode: "GLOBAL"},
	{URL: "https://www.sciencedaily.com/rss/mind_brain/mental_health.xml", Title: "ScienceDaily Mental Health", Category: "Mental Health", CountryCode: "US"},
	{URL: "https://www.thelancet.com/rssfeed/lancetpsychiatry_current.xml", Title: "The Lancet Psychiatry", Category: "Mental Health", CountryCode: "UK"},
	{URL: "https://jamanetwork.com/rss/site_44/0.xml", Title: "JAMA Psychiatry", Category: "Mental Health", CountryCode: "US"},
	{URL: "https://www.medscape.com/rss/feeds/news.xml", Title: "Medscape Medical News", Category: "General Health", CountryCode: "US"},
	{URL: "https://www.sciencedaily.com/rss/health_medicine.xml", Title: "ScienceDaily Health & Medicine", Category: "General Health", CountryCode: "US"},
	{URL: "https://www.bmj.com/rss.xml", Title: "British Medical Journal", Category: "General Health", CountryCode: "UK"},
	{URL: "https://www.webmd.com/rss/health.xml", Title: "WebMD Health", Category: "General Health", CountryCode: "US"},
}
